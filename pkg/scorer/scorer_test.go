package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/awharton/catwatch/pkg/types"
)

func TestMatch_DefaultWeights(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	sum := w.Title + w.Brand + w.Price
	assert.InDelta(t, 1.0, sum, 0.001, "default weights should sum to 1.0")
}

func TestMatch_NilListings(t *testing.T) {
	t.Parallel()

	l := &domain.Listing{Title: "Anker USB-C Hub", Brand: "Anker", Price: 34.99}

	assert.Zero(t, Confidence(nil, l))
	assert.Zero(t, Confidence(l, nil))
	assert.Zero(t, Confidence(nil, nil))
}

func TestMatch_IdenticalListings(t *testing.T) {
	t.Parallel()

	amz := &domain.Listing{
		Source: domain.SourceAmazon,
		Title:  "Anker 7-in-1 USB-C Hub with 100W Power Delivery",
		Brand:  "Anker",
		Price:  34.99,
	}
	vnd := &domain.Listing{
		Source: domain.SourceVendor,
		Title:  amz.Title,
		Brand:  amz.Brand,
		Price:  amz.Price,
	}

	b := Match(amz, vnd, DefaultWeights())
	assert.Equal(t, 1.0, b.Title)
	assert.Equal(t, 1.0, b.Brand)
	assert.Equal(t, 1.0, b.Price)
	assert.InDelta(t, 1.0, b.Total, 0.001)
}

func TestMatch_Total(t *testing.T) {
	t.Parallel()

	amz := &domain.Listing{
		Title: "Anker 7-in-1 USB-C Hub",
		Brand: "Anker",
		Price: 34.99,
	}
	vnd := &domain.Listing{
		Title: "USB-C Hub 7-in-1 (Anker)",
		Brand: "anker",
		Price: 29.99,
	}

	b := Match(amz, vnd, DefaultWeights())
	assert.Equal(t, 1.0, b.Title, "token overlap ignores order, case, and punctuation")
	assert.Equal(t, 1.0, b.Brand)
	assert.Greater(t, b.Price, 0.8)
	assert.InDelta(t, b.Title*0.55+b.Brand*0.25+b.Price*0.20, b.Total, 0.001)
}

func TestTitleScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical",
			a:    "usb-c hub",
			b:    "usb-c hub",
			want: 1.0,
		},
		{
			name: "case and punctuation insensitive",
			a:    "Anker Hub (USB-C)",
			b:    "anker hub usb-c",
			want: 1.0,
		},
		{
			name: "partial overlap",
			a:    "anker usb hub",
			b:    "anker usb cable",
			want: 0.5, // 2 shared of 4 distinct
		},
		{
			name: "disjoint",
			a:    "laptop stand",
			b:    "usb hub",
			want: 0,
		},
		{
			name: "empty title",
			a:    "",
			b:    "usb hub",
			want: 0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, titleScore(tt.a, tt.b), 0.001)
		})
	}
}

func TestBrandScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "exact match", a: "Anker", b: "Anker", want: 1.0},
		{name: "case insensitive", a: "ANKER", b: "anker", want: 1.0},
		{name: "mismatch", a: "Anker", b: "Belkin", want: 0},
		{name: "missing brand is neutral", a: "", b: "Anker", want: 0.5},
		{name: "both missing is neutral", a: "", b: "", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, brandScore(tt.a, tt.b), 0.001)
		})
	}
}

func TestPriceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    float64
		b    float64
		want float64
	}{
		{name: "identical prices", a: 30, b: 30, want: 1.0},
		{name: "order independent", a: 45, b: 30, want: 0.5},
		{name: "half gap", a: 30, b: 45, want: 0.5},
		{name: "double or worse floors at zero", a: 30, b: 90, want: 0},
		{name: "unknown price is neutral", a: 0, b: 30, want: 0.5},
		{name: "negative price is neutral", a: -1, b: 30, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, priceScore(tt.a, tt.b), 0.001)
		})
	}
}

func TestLerp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		val      float64
		minVal   float64
		maxVal   float64
		minScore float64
		maxScore float64
		want     float64
	}{
		{name: "at min", val: 0, minVal: 0, maxVal: 1, minScore: 1, maxScore: 0, want: 1},
		{name: "at max", val: 1, minVal: 0, maxVal: 1, minScore: 1, maxScore: 0, want: 0},
		{name: "midpoint", val: 0.5, minVal: 0, maxVal: 1, minScore: 1, maxScore: 0, want: 0.5},
		{name: "clamps below", val: -5, minVal: 0, maxVal: 1, minScore: 1, maxScore: 0, want: 1},
		{name: "clamps above", val: 5, minVal: 0, maxVal: 1, minScore: 1, maxScore: 0, want: 0},
		{name: "degenerate range", val: 3, minVal: 2, maxVal: 2, minScore: 0.7, maxScore: 0.9, want: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, lerp(tt.val, tt.minVal, tt.maxVal, tt.minScore, tt.maxScore), 0.001)
		})
	}
}
