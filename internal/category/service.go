package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/slug"
)

// Input is the admin category form.
type Input struct {
	Name     string  `json:"name" validate:"required"`
	Slug     string  `json:"slug"`
	Type     Type    `json:"type" validate:"required"`
	ParentID *string `json:"parentId"`
	ImageURL *string `json:"imageUrl"`
}

// Service provides business logic for categories.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

// List returns up to limit categories, optionally of one type.
func (s *Service) List(ctx context.Context, typ Type, limit int) ([]Category, error) {
	if typ != "" && !typ.Valid() {
		return nil, invalidType()
	}
	items, err := s.repo.List(ctx, typ, limit)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

// IDBySlug lets product listings filter by category slug.
func (s *Service) IDBySlug(ctx context.Context, categorySlug string) (string, error) {
	c, err := s.repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return "", mapErr(err)
	}
	return c.ID, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	c := Category{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	if err := s.apply(ctx, &c, in); err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, c)
	return created, mapErr(err)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, mapErr(err)
	}
	if err := s.apply(ctx, &c, in); err != nil {
		return Category{}, err
	}
	updated, err := s.repo.Update(ctx, c)
	return updated, mapErr(err)
}

func (s *Service) apply(ctx context.Context, c *Category, in Input) error {
	if !in.Type.Valid() {
		return invalidType()
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("INVALID_CATEGORY", "name is required")
	}
	c.Name = name
	c.Type = in.Type
	c.Slug = slug.Make(in.Slug)
	if c.Slug == "" {
		c.Slug = slug.Make(name)
	}
	c.ImageURL = trimmedRef(in.ImageURL)
	c.ParentID = trimmedRef(in.ParentID)
	if c.ParentID != nil {
		if *c.ParentID == c.ID {
			return apperr.Validation("INVALID_CATEGORY", "a category cannot be its own parent")
		}
		if _, err := s.repo.GetByID(ctx, *c.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperr.Validation("INVALID_CATEGORY", "parent category does not exist")
			}
			return apperr.Persistence(err)
		}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return mapErr(s.repo.Delete(ctx, id))
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

func invalidType() error {
	return apperr.Validation("INVALID_CATEGORY", "type must be one of team, league, country, season, jersey_type")
}

func trimmedRef(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || v == "none" {
		return nil
	}
	return &v
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("CATEGORY_NOT_FOUND", "category not found")
	case errors.Is(err, ErrSlugExists):
		return apperr.Conflict("CATEGORY_EXISTS", "a category with this slug already exists")
	default:
		return apperr.Persistence(err)
	}
}
