package grade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"7", 7},
		{"7,5", 7.5},
		{"7.25", 7.25},
		{" 9 ", 9},
		{"10", 10},
		{"6,5 rec", 6.5},
		{"-1", -1},
		{".5", 0.5},
		{"4,5,6", 4.5},
		{"1e1", 10},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestParse_NaN(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", ",", "Infinity", "-Infinity", "1e999", "x7"} {
		t.Run(raw, func(t *testing.T) {
			assert.True(t, math.IsNaN(Parse(raw)), "Parse(%q) should be NaN", raw)
			assert.False(t, Present(raw))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "7,50", Format(7.5))
	assert.Equal(t, "10,00", Format(10))
	assert.Equal(t, "—", Format(math.NaN()))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 8.0, RoundHalfUp(7.5))
	assert.Equal(t, 7.0, RoundHalfUp(7.49))
	assert.Equal(t, 7.67, Round2(23.0/3))
	assert.Equal(t, 7.5, Round2(7.5))
}
