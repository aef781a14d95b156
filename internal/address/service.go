package address

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"github.com/wichananm65/jersey-shop-backend/internal/order"
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

var _ order.AddressBook = (*Service)(nil)

// Service manages a user's address book and feeds saved addresses into
// checkout.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) GetAddresses(ctx context.Context, userID string) ([]Address, error) {
	out, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

func (s *Service) AddAddress(ctx context.Context, userID string, in Address) (Address, error) {
	a, err := s.clean(in)
	if err != nil {
		return Address{}, err
	}
	a.ID = uuid.NewString()
	a.UserID = userID
	a.CreatedAt = s.now().UTC()
	created, err := s.repo.Create(ctx, a)
	return created, mapErr(err)
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, in Address) (Address, error) {
	a, err := s.clean(in)
	if err != nil {
		return Address{}, err
	}
	a.ID = addressID
	a.UserID = userID
	updated, err := s.repo.Update(ctx, a)
	return updated, mapErr(err)
}

func (s *Service) SetDefault(ctx context.Context, userID, addressID string) error {
	return mapErr(s.repo.SetDefault(ctx, userID, addressID))
}

func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	return mapErr(s.repo.Delete(ctx, userID, addressID))
}

// Snapshot resolves a saved address for checkout.
func (s *Service) Snapshot(ctx context.Context, userID, addressID string) (order.AddressSnapshot, error) {
	a, err := s.repo.Get(ctx, userID, addressID)
	if err != nil {
		return order.AddressSnapshot{}, mapErr(err)
	}
	return a.Snapshot(), nil
}

// SaveSnapshot stores an address typed in at checkout. It becomes the
// default only when the user has none yet.
func (s *Service) SaveSnapshot(ctx context.Context, userID string, snap order.AddressSnapshot) error {
	existing, err := s.repo.List(ctx, userID)
	if err != nil {
		return apperr.Persistence(err)
	}
	a := fromSnapshot(snap)
	a.IsDefault = len(existing) == 0
	_, err = s.AddAddress(ctx, userID, a)
	return err
}

func (s *Service) clean(in Address) (Address, error) {
	a := in
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	a.Label = strings.TrimSpace(a.Label)
	if err := validate.Struct(a); err != nil {
		field := "address"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return Address{}, apperr.Validation("MISSING_ADDRESS_FIELD", field+" is required")
	}
	return a, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("ADDRESS_NOT_FOUND", "address not found")
	default:
		return apperr.Persistence(err)
	}
}
