package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/order"
	"golang.org/x/sync/errgroup"
)

const recentOrders = 6

type Products interface {
	Count(ctx context.Context) (int, error)
	LowStockCount(ctx context.Context) (int, error)
}

type Categories interface {
	Count(ctx context.Context) (int, error)
}

type Orders interface {
	Summary(ctx context.Context) (order.Summary, error)
	Recent(ctx context.Context, limit int) ([]order.Order, error)
}

// Stats is the admin landing page.
type Stats struct {
	Products         int             `json:"products"`
	Categories       int             `json:"categories"`
	Orders           int             `json:"orders"`
	Revenue          decimal.Decimal `json:"revenue"`
	LowStockVariants int             `json:"lowStockVariants"`
	RecentOrders     []order.Order   `json:"recentOrders"`
}

type Service struct {
	products   Products
	categories Categories
	orders     Orders
}

func NewService(products Products, categories Categories, orders Orders) *Service {
	return &Service{products: products, categories: categories, orders: orders}
}

// Stats runs the independent lookups concurrently; the first failure wins.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		st.Products, err = s.products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.LowStockVariants, err = s.products.LowStockCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.Categories, err = s.categories.Count(ctx)
		return err
	})
	g.Go(func() error {
		sum, err := s.orders.Summary(ctx)
		st.Orders, st.Revenue = sum.Count, sum.Revenue
		return err
	})
	g.Go(func() (err error) {
		st.RecentOrders, err = s.orders.Recent(ctx, recentOrders)
		return err
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	st.Revenue = st.Revenue.Round(2)
	return st, nil
}
