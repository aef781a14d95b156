package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
	"golang.org/x/sync/singleflight"
)

// Snapshot is what the catalog reports about a variant at add time.
type Snapshot struct {
	Line
	Stock int
}

// Catalog resolves a variant into its current price and stock.
type Catalog interface {
	Variant(ctx context.Context, variantID string) (Snapshot, error)
}

// Service orchestrates cart operations for guests and accounts.
type Service struct {
	repo    Repository
	guests  GuestStore
	catalog Catalog
	policy  MergePolicy
	log     *slog.Logger
	loads   singleflight.Group
}

func NewService(repo Repository, guests GuestStore, catalog Catalog, policy MergePolicy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, guests: guests, catalog: catalog, policy: policy, log: logger}
}

func (s *Service) Policy() MergePolicy { return s.policy }

// loadAccount collapses concurrent loads of the same account cart. The
// shared load keeps the caller's values but not its cancellation, so one
// caller going away cannot fail the others waiting on the same key.
func (s *Service) loadAccount(ctx context.Context, userID string) (Cart, error) {
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(userID, func() (interface{}, error) {
		return s.repo.GetCart(loadCtx, userID)
	})
	if err != nil {
		return Cart{}, err
	}
	return v.(Cart).Clone(), nil
}

func (s *Service) ensureAccount(ctx context.Context, userID string) (Cart, error) {
	c, err := s.loadAccount(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		c, err = s.repo.CreateCart(ctx, userID)
	}
	if err != nil {
		return Cart{}, apperr.Persistence(err)
	}
	return c, nil
}

// Get returns the current cart. An account without a stored cart gets an
// empty one; nothing is created until the first add.
func (s *Service) Get(ctx context.Context, id Identity) (Cart, error) {
	if !id.IsAccount() {
		c, err := s.guests.Load(ctx, id.ID())
		if err != nil {
			return Cart{}, apperr.Persistence(err)
		}
		return c, nil
	}

	c, err := s.loadAccount(ctx, id.ID())
	if errors.Is(err, ErrNotFound) {
		return Cart{UserID: id.ID(), Lines: []Line{}}, nil
	}
	if err != nil {
		return Cart{}, apperr.Persistence(err)
	}
	return c, nil
}

func (s *Service) load(ctx context.Context, id Identity) (Cart, error) {
	if id.IsAccount() {
		return s.ensureAccount(ctx, id.ID())
	}
	return s.Get(ctx, id)
}

func (s *Service) snapshot(ctx context.Context, variantID string) (Snapshot, error) {
	snap, err := s.catalog.Variant(ctx, variantID)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return Snapshot{}, err
		}
		return Snapshot{}, apperr.Persistence(err)
	}
	return snap, nil
}

// Add puts qty of a variant into the cart, clamped to what is left in
// stock after the quantity already held.
func (s *Service) Add(ctx context.Context, id Identity, variantID string, qty int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, apperr.Validation("INVALID_QUANTITY", "quantity must be at least 1")
	}
	snap, err := s.snapshot(ctx, variantID)
	if err != nil {
		return Cart{}, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return Cart{}, err
	}

	held, _ := c.Find(variantID)
	available := snap.Stock - held.Quantity
	if available <= 0 {
		return Cart{}, apperr.Validation("OUT_OF_STOCK", "no more stock available for this size")
	}
	if qty > available {
		qty = available
	}

	line := snap.Line
	line.Quantity = qty
	c.AddLine(line)

	if err := s.persistLine(ctx, id, c, variantID); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// SetQuantity replaces a line's quantity. Zero or less removes the line;
// variants not in the cart are ignored.
func (s *Service) SetQuantity(ctx context.Context, id Identity, variantID string, qty int) (Cart, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	if _, ok := c.Find(variantID); !ok {
		return c, nil
	}

	if qty > 0 {
		snap, err := s.snapshot(ctx, variantID)
		if err != nil {
			return Cart{}, err
		}
		if snap.Stock <= 0 {
			return Cart{}, apperr.Validation("OUT_OF_STOCK", "this size is out of stock")
		}
		if qty > snap.Stock {
			qty = snap.Stock
		}
	}

	c.SetQuantity(variantID, qty)
	if err := s.persistLine(ctx, id, c, variantID); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Service) Remove(ctx context.Context, id Identity, variantID string) (Cart, error) {
	return s.SetQuantity(ctx, id, variantID, 0)
}

func (s *Service) Clear(ctx context.Context, id Identity) error {
	if !id.IsAccount() {
		if err := s.guests.Delete(ctx, id.ID()); err != nil {
			return apperr.Persistence(err)
		}
		return nil
	}

	c, err := s.loadAccount(ctx, id.ID())
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Persistence(err)
	}
	if err := s.repo.ClearLines(ctx, c.ID); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// persistLine writes the state of one variant after a change to c.
func (s *Service) persistLine(ctx context.Context, id Identity, c Cart, variantID string) error {
	if !id.IsAccount() {
		if err := s.guests.Save(ctx, id.ID(), c); err != nil {
			return apperr.Persistence(err)
		}
		return nil
	}

	var err error
	if line, ok := c.Find(variantID); ok {
		err = s.repo.UpsertLine(ctx, c.ID, line)
	} else {
		err = s.repo.DeleteLine(ctx, c.ID, variantID)
	}
	if err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// Merge folds a guest cart into the account cart on sign-in. The lines are
// written in one transaction; the guest cart is discarded only after that
// succeeds. The account cart is then reloaded from storage.
func (s *Service) Merge(ctx context.Context, guestID, userID string) (Cart, error) {
	guest, err := s.guests.Load(ctx, guestID)
	if err != nil {
		return Cart{}, apperr.Persistence(err)
	}
	if guest.IsEmpty() {
		return s.Get(ctx, Account(userID))
	}

	acct, err := s.ensureAccount(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	if err := s.repo.MergeLines(ctx, acct.ID, guest.Lines, s.policy); err != nil {
		s.log.Error("cart merge failed", "user_id", userID, "guest_id", guestID, "lines", len(guest.Lines), "error", err)
		return Cart{}, apperr.Persistence(err)
	}

	if err := s.guests.Delete(ctx, guestID); err != nil {
		s.log.Warn("guest cart not discarded after merge", "guest_id", guestID, "error", err)
	}

	merged, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return Cart{}, apperr.Persistence(err)
	}
	s.log.Info("cart merged", "user_id", userID, "lines", len(guest.Lines), "policy", string(s.policy))
	return merged, nil
}
