package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigned(t *testing.T) {
	assert.Equal(t, Default.Gain, Default.Signed(0))
	assert.Equal(t, Default.Gain, Default.Signed(12.5))
	assert.Equal(t, Default.Loss, Default.Signed(-0.01))
}

func TestHexToRGB(t *testing.T) {
	r, g, b := hexToRGB("#2563EB")
	assert.Equal(t, []uint8{0x25, 0x63, 0xEB}, []uint8{r, g, b})

	r, g, b = hexToRGB("bad")
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{r, g, b})
}

func TestLerp(t *testing.T) {
	assert.Equal(t, uint8(0), lerp(0, 200, 0))
	assert.Equal(t, uint8(100), lerp(0, 200, 0.5))
	assert.Equal(t, uint8(200), lerp(0, 200, 1))
	assert.Equal(t, uint8(150), lerp(200, 100, 0.5))
}

func TestGradientText_KeepsLineStructure(t *testing.T) {
	out := GradientText("ab\n\ncd", Default.Primary, Default.Accent)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "d")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

