// internal/domain/pricing/amount_test.go
package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountArithmetic(t *testing.T) {
	t.Run("known plus known", func(t *testing.T) {
		sum := Known(10).Add(Known(2.5))
		v, ok := sum.Value()
		require.True(t, ok)
		assert.Equal(t, 12.5, v)
	})

	t.Run("pending poisons the aggregate", func(t *testing.T) {
		sum := Known(10).Add(Pending()).AddFloat(5)
		assert.True(t, sum.IsPending())

		_, ok := sum.Value()
		assert.False(t, ok)
	})

	t.Run("mul on pending stays pending", func(t *testing.T) {
		assert.True(t, Pending().Mul(3).IsPending())
	})

	t.Run("less than requires a known value", func(t *testing.T) {
		assert.True(t, Known(40).LessThan(100))
		assert.False(t, Known(120).LessThan(100))
		assert.False(t, Pending().LessThan(100))
	})
}

func TestAmountJSON(t *testing.T) {
	type payload struct {
		Subtotal Amount `json:"subtotal"`
	}

	t.Run("pending marshals to null", func(t *testing.T) {
		data, err := json.Marshal(payload{Subtotal: Pending()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"subtotal":null}`, string(data))
	})

	t.Run("known marshals to the value", func(t *testing.T) {
		data, err := json.Marshal(payload{Subtotal: Known(42.5)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"subtotal":42.5}`, string(data))
	})

	t.Run("null unmarshals to pending", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"subtotal":null}`), &p))
		assert.True(t, p.Subtotal.IsPending())
	})
}
