package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestK(t *testing.T) {
	tests := []struct {
		v        float64
		currency bool
		want     string
	}{
		{950, true, "€950"},
		{999.4, false, "999"},
		{1000, false, "1.0k"},
		{12345, true, "€12.3k"},
		{-2500, true, "€-2.5k"},
		{math.NaN(), true, "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, K(tt.v, tt.currency))
	}
}

func TestPctAndFloat(t *testing.T) {
	assert.Equal(t, "12.3%", Pct(0.1234, 1))
	assert.Equal(t, "5.00%", Pct(0.05, 2))
	assert.Equal(t, "-", Pct(math.NaN(), 2))

	assert.Equal(t, "2.80", Float(2.8, 2))
	assert.Equal(t, "0.333", Float(1.0/3, 3))
	assert.Equal(t, "-", Float(math.Inf(1), 2))

	assert.Equal(t, "€12.50", Money(12.5))
	assert.Equal(t, "+0.42", Delta(0.42, 2))
	assert.Equal(t, "-1.10", Delta(-1.1, 2))
}
