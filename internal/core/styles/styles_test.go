package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	require.True(t, ApplyTheme("gruvbox"))
	assert.Equal(t, themes["gruvbox"].Primary, ColorPrimary)

	assert.False(t, ApplyTheme("solarized-neon"))
	assert.Equal(t, themes["gruvbox"].Primary, ColorPrimary, "unknown theme keeps the current one")
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	assert.Contains(t, names, DefaultTheme)
	assert.IsNonDecreasing(t, names)
}

func TestGlamourStyleUsesPalette(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.Document.Color)
	assert.Equal(t, "#c0caf5", *cfg.Document.Color)
}

func TestColorForStringIsStable(t *testing.T) {
	assert.Equal(t, ColorForString("pets"), ColorForString("pets"))
}
