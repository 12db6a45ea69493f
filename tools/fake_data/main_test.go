package main

import (
	"bytes"
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/adinsights/internal/dataset"
)

var testStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateDeterministic(t *testing.T) {
	opts := genOptions{start: testStart, days: 5, fill: 0.5, withATC: true}
	a := generate(rand.New(rand.NewSource(42)), opts)
	b := generate(rand.New(rand.NewSource(42)), opts)
	require.NotZero(t, a.Len())
	assert.Equal(t, a, b)

	for _, r := range a.Records {
		assert.False(t, r.Date.Before(testStart))
		assert.True(t, r.Date.Before(testStart.AddDate(0, 0, 5)))
		assert.LessOrEqual(t, r.Clicks, r.Impressions)
		assert.LessOrEqual(t, r.Orders, r.AddToCart)
		assert.LessOrEqual(t, r.AddToCart, r.Clicks)
		assert.GreaterOrEqual(t, r.Cost, 0.0)
		if r.Orders == 0 {
			assert.Zero(t, r.Revenue)
		}
	}
}

func TestGeneratedCSVLoads(t *testing.T) {
	for _, atc := range []bool{true, false} {
		ds := generate(rand.New(rand.NewSource(7)), genOptions{start: testStart, days: 3, fill: 1, withATC: atc})
		keywords := 0
		for _, p := range products {
			keywords += len(p.keywords)
		}
		// every channel, campaign type and keyword delivers daily at fill 1
		assert.Equal(t, 3*len(channels)*2*keywords, ds.Len())

		var buf bytes.Buffer
		require.NoError(t, writeCSV(&buf, ds))

		loaded, err := dataset.ReadCSV(context.Background(), &buf)
		require.NoError(t, err)
		assert.Equal(t, atc, loaded.HasAddToCart)
		require.Equal(t, ds.Len(), loaded.Len())
		assert.Equal(t, ds.Records[0].Keyword, loaded.Records[0].Keyword)
		assert.InDelta(t, ds.Records[0].Cost, loaded.Records[0].Cost, 1e-9)
		assert.True(t, ds.Records[0].Date.Equal(loaded.Records[0].Date))
	}
}

func TestDraw(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	assert.Zero(t, draw(r, 0, 0.5))
	assert.Zero(t, draw(r, 100, 0))
	assert.Equal(t, int64(100), draw(r, 100, 1))
	for range 100 {
		v := draw(r, 50, 0.3)
		assert.GreaterOrEqual(t, v, int64(0))
		assert.LessOrEqual(t, v, int64(50))
	}
}
