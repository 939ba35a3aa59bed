package cart

import (
	"testing"

	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOrIncrement_InsertsNewLine(t *testing.T) {
	c := &domain.Cart{UserID: "123"}

	AddOrIncrement(c, 1, true, 3)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int64(1), c.Lines[0].ProductID)
	assert.Equal(t, int32(3), c.Lines[0].Quantity)
	assert.True(t, c.Lines[0].Selected)
}

func TestAddOrIncrement_InsertFloorsAtOne(t *testing.T) {
	c := &domain.Cart{UserID: "123"}

	AddOrIncrement(c, 1, false, 0)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int32(1), c.Lines[0].Quantity)
	assert.False(t, c.Lines[0].Selected)
}

func TestAddOrIncrement_IncrementsExisting(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	AddOrIncrement(c, 1, false, 4)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int32(6), c.Lines[0].Quantity)
	// existing selection is kept, the flag only applies on insert
	assert.True(t, c.Lines[0].Selected)
}

func TestAddOrIncrement_NegativeDeltaFloorsAtOne(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	AddOrIncrement(c, 1, true, -10)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int32(1), c.Lines[0].Quantity)
}

func TestSetQuantity_ClampsToMaxUnits(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	SetQuantity(c, 1, 50, 7)

	assert.Equal(t, int32(7), c.Lines[0].Quantity)
}

func TestSetQuantity_ZeroDeletesLine(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: 1, Quantity: 2, Selected: true},
			{ProductID: 2, Quantity: 1, Selected: false},
		},
	}

	SetQuantity(c, 1, 0, 10)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int64(2), c.Lines[0].ProductID)
}

func TestSetQuantity_NegativeDeletesLine(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	SetQuantity(c, 1, -3, 10)

	assert.Empty(t, c.Lines)
}

func TestSetQuantity_MissingLineInsertsSelected(t *testing.T) {
	c := &domain.Cart{UserID: "123"}

	SetQuantity(c, 5, 3, 10)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int64(5), c.Lines[0].ProductID)
	assert.Equal(t, int32(3), c.Lines[0].Quantity)
	assert.True(t, c.Lines[0].Selected)
}

func TestIncrement_ClampsToMaxUnits(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 4, Selected: true}},
	}

	Increment(c, 1, 10, 5)

	assert.Equal(t, int32(5), c.Lines[0].Quantity)
}

func TestIncrement_MissingLineCreatesWithQuantityOne(t *testing.T) {
	c := &domain.Cart{UserID: "123"}

	// delta and maxUnits are ignored when the line does not exist yet
	Increment(c, 9, 42, 3)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int32(1), c.Lines[0].Quantity)
	assert.True(t, c.Lines[0].Selected)
}

func TestDecrement_SubtractsDelta(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 5, Selected: true}},
	}

	Decrement(c, 1, 2)

	assert.Equal(t, int32(3), c.Lines[0].Quantity)
}

func TestDecrement_ReachingZeroDeletesLine(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	Decrement(c, 1, 2)

	assert.Empty(t, c.Lines)
}

func TestDecrement_BelowZeroDeletesLine(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	Decrement(c, 1, 99)

	assert.Empty(t, c.Lines)
}

func TestDecrement_MissingLineIsNoOp(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	Decrement(c, 42, 1)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, int32(2), c.Lines[0].Quantity)
}

func TestToggleSelected_Flips(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{{ProductID: 1, Quantity: 2, Selected: true}},
	}

	ToggleSelected(c, 1)
	assert.False(t, c.Lines[0].Selected)
	assert.Equal(t, int32(2), c.Lines[0].Quantity)

	ToggleSelected(c, 1)
	assert.True(t, c.Lines[0].Selected)
}

func TestToggleSelected_MissingLineIsNoOp(t *testing.T) {
	c := &domain.Cart{UserID: "123"}

	ToggleSelected(c, 1)

	assert.Empty(t, c.Lines)
}

func TestRemoveAll_ClearsEveryLine(t *testing.T) {
	c := &domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: 1, Quantity: 2, Selected: true},
			{ProductID: 2, Quantity: 1, Selected: false},
		},
	}

	RemoveAll(c)

	assert.Empty(t, c.Lines)
}

// Any mix of increments and decrements must keep the quantity >= 1 while
// the line exists, and remove the line as soon as cumulative decrements
// would drive it to zero or below.
func TestIncrementDecrementSequence_QuantityInvariant(t *testing.T) {
	c := &domain.Cart{UserID: "123"}
	const maxUnits = 10

	steps := []struct {
		op    string
		delta int32
	}{
		{"inc", 1}, // create, qty=1
		{"inc", 3}, // 4
		{"dec", 1}, // 3
		{"inc", 20}, // clamped to 10
		{"dec", 4},  // 6
		{"dec", 5},  // 1
	}

	for _, s := range steps {
		switch s.op {
		case "inc":
			Increment(c, 7, s.delta, maxUnits)
		case "dec":
			Decrement(c, 7, s.delta)
		}
		if line := c.Line(7); line != nil {
			require.GreaterOrEqual(t, line.Quantity, int32(1))
			require.LessOrEqual(t, line.Quantity, int32(maxUnits))
		}
	}

	require.NotNil(t, c.Line(7))
	assert.Equal(t, int32(1), c.Line(7).Quantity)

	Decrement(c, 7, 1)
	assert.Nil(t, c.Line(7), "line must be gone once decrements reach zero")
}
