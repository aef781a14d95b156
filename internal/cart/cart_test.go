package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(variant string, price string, qty int) Line {
	return Line{VariantID: variant, ProductID: "p-" + variant, Title: "Jersey " + variant, Size: "M", UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestAddLineSameVariantSumsQuantities(t *testing.T) {
	var c Cart
	c.AddLine(line("v1", "40.00", 2))
	c.AddLine(line("v1", "40.00", 3))

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Quantity)
	assert.True(t, c.Total().Equal(decimal.RequireFromString("200.00")))
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	a := Cart{}
	a.AddLine(line("v1", "10", 1))
	a.AddLine(line("v2", "20", 2))
	b := a.Clone()

	a.SetQuantity("v1", 0)
	b.RemoveLine("v1")

	assert.Equal(t, b.Lines, a.Lines)
	assert.Equal(t, 2, a.ItemCount())
}

func TestSetQuantityAndRemoveIgnoreUnknownVariant(t *testing.T) {
	c := Cart{}
	c.AddLine(line("v1", "10", 1))
	c.SetQuantity("missing", 4)
	c.RemoveLine("missing")

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.ItemCount())
}

func TestItemCountMatchesQuantitiesUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	variants := []string{"a", "b", "c", "d"}
	var c Cart

	for i := 0; i < 500; i++ {
		v := variants[rng.Intn(len(variants))]
		switch rng.Intn(3) {
		case 0:
			c.AddLine(line(v, "1.50", rng.Intn(4)+1))
		case 1:
			c.RemoveLine(v)
		case 2:
			c.SetQuantity(v, rng.Intn(6)-1)
		}

		sum := 0
		seen := map[string]bool{}
		for _, l := range c.Lines {
			assert.False(t, seen[l.VariantID], "duplicate line for %s", l.VariantID)
			seen[l.VariantID] = true
			sum += l.Quantity
		}
		assert.Equal(t, sum, c.ItemCount())
		assert.GreaterOrEqual(t, c.ItemCount(), 0)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	c := Cart{}
	c.AddLine(line("v1", "10", 1))
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
	assert.NotNil(t, c.Lines)
}

func TestMergePolicies(t *testing.T) {
	base := Cart{}
	base.AddLine(line("v1", "40", 1))
	base.AddLine(line("v2", "25", 2))
	incoming := []Line{line("v1", "40", 3), line("v3", "15", 1)}

	over := base.Clone()
	over.Merge(incoming, MergeOverwrite)
	l, _ := over.Find("v1")
	assert.Equal(t, 3, l.Quantity)
	assert.Len(t, over.Lines, 3)

	sum := base.Clone()
	sum.Merge(incoming, MergeSum)
	l, _ = sum.Find("v1")
	assert.Equal(t, 4, l.Quantity)
}

func TestParseMergePolicy(t *testing.T) {
	assert.Equal(t, MergeSum, ParseMergePolicy(" SUM "))
	assert.Equal(t, MergeOverwrite, ParseMergePolicy("overwrite"))
	assert.Equal(t, MergeOverwrite, ParseMergePolicy("anything-else"))
}

func TestIdentity(t *testing.T) {
	g := Guest("g-1")
	a := Account("u-1")

	assert.False(t, g.IsAccount())
	assert.Equal(t, "g-1", g.ID())
	assert.True(t, a.IsAccount())
	assert.Equal(t, "u-1", a.ID())
	assert.True(t, Identity{}.IsZero())
}
