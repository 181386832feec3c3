package mapsession

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeStoreDefaultsToLight(t *testing.T) {
	s := NewThemeStore("neon")
	assert.Equal(t, ThemeLight, s.Get())
}

func TestThemeStoreNotifiesSubscribers(t *testing.T) {
	s := NewThemeStore(ThemeLight)

	var got []Theme
	unsubscribe := s.Subscribe(func(th Theme) {
		got = append(got, th)
	})

	s.Set(ThemeDark)
	s.Set(ThemeDark) // no-op, already dark
	s.Set("sepia")   // rejected
	assert.Equal(t, []Theme{ThemeDark}, got)

	unsubscribe()
	s.Set(ThemeLight)
	assert.Equal(t, []Theme{ThemeDark}, got, "unsubscribed callbacks stay silent")
}

func TestThemeStorePaletteFollowsTheme(t *testing.T) {
	s := NewThemeStore(ThemeDark)
	assert.Equal(t, palettes[ThemeDark], s.Palette())

	s.Set(ThemeLight)
	assert.Equal(t, palettes[ThemeLight], s.Palette())
}
