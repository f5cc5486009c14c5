package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/scenedsl/pkg/errors"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   RGB
		want string
	}{
		{"red", RGB{R: 1, G: 0, B: 0}, "#ff0000"},
		{"black", RGB{}, "#000000"},
		{"white", RGB{R: 1, G: 1, B: 1}, "#ffffff"},
		{"truncates", RGB{R: 0.5, G: 0.5, B: 0.5}, "#7f7f7f"},
		{"clamps", RGB{R: 1.5, G: -0.2, B: 0}, "#ff0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("six digits", func(t *testing.T) {
		c, err := Decode("#ff0000")
		require.NoError(t, err)
		assert.Equal(t, RGB{R: 1, G: 0, B: 0}, c)
	})

	t.Run("without hash", func(t *testing.T) {
		c, err := Decode("00ff00")
		require.NoError(t, err)
		assert.Equal(t, RGB{R: 0, G: 1, B: 0}, c)
	})

	t.Run("one digit per channel", func(t *testing.T) {
		c, err := Decode("#f0a")
		require.NoError(t, err)
		assert.InDelta(t, 15.0/255, c.R, 1e-12)
		assert.Equal(t, 0.0, c.G)
		assert.InDelta(t, 10.0/255, c.B, 1e-12)
	})

	t.Run("uppercase", func(t *testing.T) {
		c, err := Decode("#FF8000")
		require.NoError(t, err)
		assert.InDelta(t, 128.0/255, c.G, 1e-12)
	})
}

func TestDecodeMalformed(t *testing.T) {
	for _, s := range []string{"", "#", "#ff00", "#gg0000", "#12345678", "red"} {
		t.Run(s, func(t *testing.T) {
			_, err := Decode(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeMalformedColor), "got %v", err)
		})
	}
}

func TestQuantizedRoundTrip(t *testing.T) {
	for r := 0; r < 256; r++ {
		in := RGB{R: float64(r) / 255, G: float64(255-r) / 255, B: float64(r/2) / 255}
		out, err := Decode(Encode(in))
		require.NoError(t, err)
		require.Equal(t, in, out, "channel value %d", r)
	}
}
