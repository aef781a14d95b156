package order

import (
	"context"
	"errors"
	"time"

	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

// Service covers order reads and the admin status workflow.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

// GetMine hides other users' orders behind the same not-found answer.
func (s *Service) GetMine(ctx context.Context, userID, id string) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, mapErr(err)
	}
	if o.UserID != userID {
		return Order{}, apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, status string) ([]Order, error) {
	st := Status(status)
	if st != "" && !st.Valid() {
		return nil, apperr.Validation("INVALID_STATUS", "unknown order status")
	}
	out, err := s.repo.List(ctx, st)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

func (s *Service) SetStatus(ctx context.Context, id string, to Status) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, mapErr(err)
	}
	if !o.Status.CanTransition(to) {
		return Order{}, apperr.Validation("INVALID_STATUS_TRANSITION", "cannot move order from "+string(o.Status)+" to "+string(to))
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, o.Status, to, now); err != nil {
		return Order{}, mapErr(err)
	}
	o.Status = to
	o.UpdatedAt = now
	return o, nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	sum, err := s.repo.Summary(ctx)
	if err != nil {
		return Summary{}, apperr.Persistence(err)
	}
	return sum, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Order, error) {
	out, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return out, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	case errors.Is(err, ErrStatusChanged):
		return apperr.Conflict("ORDER_STATUS_CHANGED", "order status changed, reload and try again")
	}
	return apperr.Persistence(err)
}
