package promo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

// Validator answers "does this code apply to this subtotal". Lookup
// failures other than a missing code surface as errors; every other
// outcome is a Result.
type Validator struct {
	repo Repository
}

func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo}
}

func (v *Validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (Result, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Result{Reason: ReasonNotFoundOrInactive}, nil
	}

	p, err := v.repo.GetByCode(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return Evaluate(nil, subtotal, now), nil
	}
	if err != nil {
		return Result{}, apperr.Persistence(err)
	}
	return Evaluate(&p, subtotal, now), nil
}

// Input is the admin form for a promo code.
type Input struct {
	Code      string           `json:"code" validate:"required,max=32"`
	Kind      Kind             `json:"type" validate:"required,oneof=percentage fixed"`
	Value     decimal.Decimal  `json:"value"`
	MinOrder  *decimal.Decimal `json:"minOrder"`
	ExpiresAt *time.Time       `json:"expiresAt"`
	Active    *bool            `json:"isActive"`
}

var hundred = decimal.NewFromInt(100)

func (in Input) check() error {
	if NormalizeCode(in.Code) == "" {
		return apperr.Validation("INVALID_PROMO", "code is required")
	}
	switch in.Kind {
	case KindPercentage:
		if !in.Value.IsPositive() || in.Value.GreaterThan(hundred) {
			return apperr.Validation("INVALID_PROMO", "percentage must be greater than 0 and at most 100")
		}
	case KindFixed:
		if !in.Value.IsPositive() {
			return apperr.Validation("INVALID_PROMO", "fixed discount must be greater than 0")
		}
	default:
		return apperr.Validation("INVALID_PROMO", "type must be percentage or fixed")
	}
	if in.MinOrder != nil && in.MinOrder.IsNegative() {
		return apperr.Validation("INVALID_PROMO", "minimum order cannot be negative")
	}
	return nil
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Promotion, error) {
	if err := in.check(); err != nil {
		return Promotion{}, err
	}
	p := Promotion{
		ID:        uuid.NewString(),
		Code:      NormalizeCode(in.Code),
		Kind:      in.Kind,
		Value:     in.Value,
		MinOrder:  in.MinOrder,
		ExpiresAt: in.ExpiresAt,
		Active:    in.Active == nil || *in.Active,
		CreatedAt: s.now().UTC(),
	}
	created, err := s.repo.Create(ctx, p)
	return created, mapErr(err)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Promotion, error) {
	if err := in.check(); err != nil {
		return Promotion{}, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Promotion{}, mapErr(err)
	}
	existing.Code = NormalizeCode(in.Code)
	existing.Kind = in.Kind
	existing.Value = in.Value
	existing.MinOrder = in.MinOrder
	existing.ExpiresAt = in.ExpiresAt
	if in.Active != nil {
		existing.Active = *in.Active
	}
	updated, err := s.repo.Update(ctx, existing)
	return updated, mapErr(err)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return mapErr(s.repo.Delete(ctx, id))
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("PROMO_NOT_FOUND", "promo code not found")
	case errors.Is(err, ErrCodeExists):
		return apperr.Conflict("PROMO_CODE_EXISTS", "a promo code with this name already exists")
	default:
		return apperr.Persistence(err)
	}
}
