package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Line is one variant in a cart. UnitPrice is the price captured when the
// variant was first added and is not refreshed from the catalog.
type Line struct {
	VariantID string          `json:"variantId"`
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Size      string          `json:"size"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Slug      string          `json:"slug"`
}

func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is keyed by variant: at most one Line per VariantID.
type Cart struct {
	ID     string `json:"cartId,omitempty"`
	UserID string `json:"userId,omitempty"`
	Lines  []Line `json:"items"`
}

func (c *Cart) index(variantID string) int {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// AddLine increments the quantity of an existing line for the same variant
// or appends a new one. It does not enforce stock.
func (c *Cart) AddLine(l Line) {
	if i := c.index(l.VariantID); i >= 0 {
		c.Lines[i].Quantity += l.Quantity
		return
	}
	c.Lines = append(c.Lines, l)
}

func (c *Cart) RemoveLine(variantID string) {
	if i := c.index(variantID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// SetQuantity replaces a line's quantity; qty <= 0 removes the line.
// Unknown variants are ignored.
func (c *Cart) SetQuantity(variantID string, qty int) {
	if qty <= 0 {
		c.RemoveLine(variantID)
		return
	}
	if i := c.index(variantID); i >= 0 {
		c.Lines[i].Quantity = qty
	}
}

func (c *Cart) Clear() {
	c.Lines = []Line{}
}

func (c Cart) Find(variantID string) (Line, bool) {
	if i := c.index(variantID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Clone() Cart {
	out := c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}

// Identity is who a cart operation acts for: a guest (browser-scoped id)
// or an authenticated account.
type Identity struct {
	guestID string
	userID  string
}

func Guest(guestID string) Identity  { return Identity{guestID: guestID} }
func Account(userID string) Identity { return Identity{userID: userID} }

func (i Identity) IsAccount() bool { return i.userID != "" }
func (i Identity) IsZero() bool    { return i.userID == "" && i.guestID == "" }

func (i Identity) ID() string {
	if i.IsAccount() {
		return i.userID
	}
	return i.guestID
}

// MergePolicy decides the quantity when a guest line meets an account
// line for the same variant.
type MergePolicy string

const (
	MergeOverwrite MergePolicy = "overwrite"
	MergeSum       MergePolicy = "sum"
)

func ParseMergePolicy(s string) MergePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(MergeSum)) {
		return MergeSum
	}
	return MergeOverwrite
}

// Merge folds incoming lines into c per policy.
func (c *Cart) Merge(incoming []Line, policy MergePolicy) {
	for _, l := range incoming {
		i := c.index(l.VariantID)
		switch {
		case i < 0:
			c.Lines = append(c.Lines, l)
		case policy == MergeSum:
			c.Lines[i].Quantity += l.Quantity
		default:
			c.Lines[i].Quantity = l.Quantity
		}
	}
}
