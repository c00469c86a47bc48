package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{"gruvbox", "plain", "tokyo-night"}, ThemeNames())
	assert.Contains(t, ThemeNames(), DefaultTheme)
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() {
		p, _ := GetPalette(DefaultTheme)
		SetTheme(p)
	})

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)

	SetTheme(p)
	assert.Equal(t, p, CurrentPalette)
	assert.Equal(t, p.Primary, BotStyle.GetForeground())

	_, ok = GetPalette("neon")
	assert.False(t, ok)
}

func TestPlainThemeRendersText(t *testing.T) {
	t.Cleanup(func() {
		p, _ := GetPalette(DefaultTheme)
		SetTheme(p)
	})

	p, _ := GetPalette("plain")
	SetTheme(p)
	assert.Contains(t, BotStyle.Render("bot>"), "bot>")
}
