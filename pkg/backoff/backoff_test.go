package backoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prospectly/billing-service/pkg/backoff"
)

func TestExponential_NextInterval(t *testing.T) {
	t.Parallel()

	t.Run("doubles delay each attempt", func(t *testing.T) {
		t.Parallel()
		strategy := backoff.Exponential{
			InitialInterval: time.Second,
			Multiplier:      2,
		}

		assert.Equal(t, time.Second, strategy.NextInterval(1))
		assert.Equal(t, 2*time.Second, strategy.NextInterval(2))
		assert.Equal(t, 4*time.Second, strategy.NextInterval(3))
	})

	t.Run("respects max interval", func(t *testing.T) {
		t.Parallel()
		strategy := backoff.Exponential{
			InitialInterval: time.Second,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
		}

		assert.Equal(t, 5*time.Second, strategy.NextInterval(10))
	})

	t.Run("returns zero for non-positive attempts", func(t *testing.T) {
		t.Parallel()
		strategy := backoff.Exponential{}
		assert.Equal(t, time.Duration(0), strategy.NextInterval(0))
		assert.Equal(t, time.Duration(0), strategy.NextInterval(-1))
	})

	t.Run("jitter stays within bounds", func(t *testing.T) {
		t.Parallel()
		strategy := backoff.Exponential{
			InitialInterval: time.Second,
			Multiplier:      2,
			JitterFactor:    0.1,
		}

		for i := 0; i < 100; i++ {
			d := strategy.NextInterval(2)
			assert.GreaterOrEqual(t, d, 1800*time.Millisecond)
			assert.LessOrEqual(t, d, 2200*time.Millisecond)
		}
	})
}

func TestFixed_NextInterval(t *testing.T) {
	t.Parallel()

	strategy := backoff.Fixed{Interval: 3 * time.Second}
	assert.Equal(t, 3*time.Second, strategy.NextInterval(1))
	assert.Equal(t, 3*time.Second, strategy.NextInterval(7))
	assert.Equal(t, time.Duration(0), strategy.NextInterval(0))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	strategy := backoff.Default()
	assert.Equal(t, time.Second, strategy.NextInterval(1))
	assert.Equal(t, 2*time.Second, strategy.NextInterval(2))
	assert.Equal(t, 4*time.Second, strategy.NextInterval(3))
}
