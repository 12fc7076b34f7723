package stat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys_CanonicalOrder(t *testing.T) {
	want := []string{
		"fla", "mo", "mm", "dh", "cob", "tt", "prl",
		"spr", "acc", "end", "res", "rec", "hil", "att",
	}
	assert.Equal(t, want, Keys)
}

func TestIsKey(t *testing.T) {
	for _, k := range Keys {
		assert.True(t, IsKey(k), "key %q", k)
	}
	assert.False(t, IsKey("spd"))
	assert.False(t, IsKey(""))
	assert.False(t, IsKey("FLA"))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{75, "75"},
		{0, "0"},
		{-3, "-3"},
		{75.5, "75.5"},
		{0.25, "0.25"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "FormatValue(%v)", tt.in)
	}
}

func TestIsIntegral(t *testing.T) {
	assert.True(t, IsIntegral(75))
	assert.True(t, IsIntegral(0))
	assert.False(t, IsIntegral(75.5))
}
