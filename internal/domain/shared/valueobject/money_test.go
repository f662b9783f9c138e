package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), INR)
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", INR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", INR)
		assert.Error(t, err)
	})
}

func TestNewMoneyINR(t *testing.T) {
	m := NewMoneyINR(decimal.NewFromFloat(50.00))
	assert.Equal(t, INR, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(50.00)))
}

func TestZeroINR(t *testing.T) {
	m := ZeroINR()
	assert.True(t, m.IsZero())
	assert.Equal(t, INR, m.Currency())
}

func TestMoneyIsPositiveNegativeZero(t *testing.T) {
	positive := NewMoneyINRFromFloat(100)
	negative := NewMoneyINRFromFloat(-100)
	zero := ZeroINR()

	assert.True(t, positive.IsPositive())
	assert.False(t, positive.IsNegative())
	assert.False(t, positive.IsZero())

	assert.False(t, negative.IsPositive())
	assert.True(t, negative.IsNegative())
	assert.False(t, negative.IsZero())

	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
	assert.True(t, zero.IsZero())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		m1 := NewMoneyINRFromFloat(100.50)
		m2 := NewMoneyINRFromFloat(50.25)
		result, err := m1.Add(m2)
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(150.75)))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1, _ := NewMoneyFromFloat(100, INR)
		m2, _ := NewMoneyFromFloat(50, USD)
		_, err := m1.Add(m2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneySubtract(t *testing.T) {
	t.Run("subtracts same currency", func(t *testing.T) {
		m1 := NewMoneyINRFromFloat(100)
		m2 := NewMoneyINRFromFloat(150)
		result, err := m1.Subtract(m2)
		require.NoError(t, err)
		assert.True(t, result.IsNegative())
		assert.True(t, result.Amount().Equal(decimal.NewFromInt(-50)))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1, _ := NewMoneyFromFloat(100, INR)
		m2, _ := NewMoneyFromFloat(50, EUR)
		_, err := m1.Subtract(m2)
		assert.Error(t, err)
	})
}

func TestMoneyWithinTolerance(t *testing.T) {
	tolerance := decimal.NewFromFloat(0.01)

	t.Run("equal amounts are within tolerance", func(t *testing.T) {
		m1 := NewMoneyINRFromFloat(1500)
		m2 := NewMoneyINRFromFloat(1500)
		assert.True(t, m1.WithinTolerance(m2, tolerance))
	})

	t.Run("sub-cent difference is within tolerance", func(t *testing.T) {
		m1 := NewMoneyINRFromFloat(1500.004)
		m2 := NewMoneyINRFromFloat(1500)
		assert.True(t, m1.WithinTolerance(m2, tolerance))
	})

	t.Run("exact tolerance boundary is not within tolerance", func(t *testing.T) {
		m1 := NewMoneyINRFromFloat(1500.01)
		m2 := NewMoneyINRFromFloat(1500)
		assert.False(t, m1.WithinTolerance(m2, tolerance))
	})

	t.Run("different currencies are never within tolerance", func(t *testing.T) {
		m1, _ := NewMoneyFromFloat(1500, INR)
		m2, _ := NewMoneyFromFloat(1500, USD)
		assert.False(t, m1.WithinTolerance(m2, tolerance))
	})
}

func TestMoneyComparisons(t *testing.T) {
	small := NewMoneyINRFromFloat(100)
	large := NewMoneyINRFromFloat(200)

	lt, err := small.LessThan(large)
	require.NoError(t, err)
	assert.True(t, lt)

	gte, err := large.GreaterThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, gte)

	gte, err = large.GreaterThanOrEqual(large)
	require.NoError(t, err)
	assert.True(t, gte)

	usd, _ := NewMoneyFromFloat(100, USD)
	_, err = small.LessThan(usd)
	assert.Error(t, err)
}

func TestMoneyEquals(t *testing.T) {
	m1 := NewMoneyINRFromFloat(100)
	m2 := NewMoneyINRFromFloat(100)
	m3 := NewMoneyINRFromFloat(100.01)
	usd, _ := NewMoneyFromFloat(100, USD)

	assert.True(t, m1.Equals(m2))
	assert.False(t, m1.Equals(m3))
	assert.False(t, m1.Equals(usd))
}

func TestMoneyString(t *testing.T) {
	m := NewMoneyINRFromFloat(1234.5)
	assert.Equal(t, "1234.50 INR", m.String())
	assert.Equal(t, "1234.500", m.StringFixed(3))
}

func TestMoneyJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := NewMoneyINRFromFloat(99.99)
		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Money
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, original.Equals(decoded))
	})

	t.Run("invalid amount", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"abc","currency":"INR"}`), &m)
		assert.Error(t, err)
	})
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans string", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("42.50"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(42.50)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans bytes", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan([]byte("10")))
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(10)))
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(true))
	})
}

func TestMoneyValue(t *testing.T) {
	m := NewMoneyINRFromFloat(12.34)
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "12.34", v)
}
