// Package theme holds the terminal color palette and small styling helpers.
package theme

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the semantic color palette for the entire TUI.
type Theme struct {
	Base    lipgloss.Color
	Surface lipgloss.Color
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Gain    lipgloss.Color
	Loss    lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Default mirrors the brokerage web client: blue/purple brand, green gains, red losses.
var Default = Theme{
	Base:    lipgloss.Color("#111827"),
	Surface: lipgloss.Color("#1F2937"),
	Border:  lipgloss.Color("#374151"),
	Muted:   lipgloss.Color("#9CA3AF"),
	Text:    lipgloss.Color("#F3F4F6"),
	Primary: lipgloss.Color("#2563EB"),
	Accent:  lipgloss.Color("#9333EA"),
	Gain:    lipgloss.Color("#16A34A"),
	Loss:    lipgloss.Color("#DC2626"),
	Warning: lipgloss.Color("#F59E0B"),
	Error:   lipgloss.Color("#EF4444"),
}

// Signed picks the gain color for v ≥ 0 and the loss color otherwise
func (t Theme) Signed(v float64) lipgloss.Color {
	if v >= 0 {
		return t.Gain
	}
	return t.Loss
}

// GradientText applies a horizontal color gradient across each line of text.
func GradientText(text string, from, to lipgloss.Color) string {
	fr, fg, fb := hexToRGB(string(from))
	tr, tg, tb := hexToRGB(string(to))

	lines := strings.Split(text, "\n")
	for li, line := range lines {
		runes := []rune(line)
		if len(runes) == 0 {
			continue
		}

		var sb strings.Builder
		for i, r := range runes {
			t := 0.0
			if len(runes) > 1 {
				t = float64(i) / float64(len(runes)-1)
			}
			color := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", lerp(fr, tr, t), lerp(fg, tg, t), lerp(fb, tb, t)))
			sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(r)))
		}
		lines[li] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + t*float64(int(b)-int(a))))
}

func hexToRGB(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var r, g, b uint8
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
