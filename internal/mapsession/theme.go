package mapsession

import "sync"

// Theme is the page-level color scheme the overlay palette follows.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Palette is the overlay card coloring for a theme.
type Palette struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Border     string `json:"border"`
}

var palettes = map[Theme]Palette{
	ThemeLight: {Background: "rgba(255,255,255,0.98)", Foreground: "#0f172a", Border: "#e2e8f0"},
	ThemeDark:  {Background: "rgba(15,23,42,0.96)", Foreground: "#e2e8f0", Border: "#334155"},
}

// ThemeStore is explicit observable theme state: consumers subscribe to it
// instead of inspecting anything global.
type ThemeStore struct {
	mu    sync.RWMutex
	theme Theme
	subs  map[int]func(Theme)
	next  int
}

// NewThemeStore creates a store with the given initial theme.
func NewThemeStore(initial Theme) *ThemeStore {
	if initial != ThemeDark {
		initial = ThemeLight
	}
	return &ThemeStore{theme: initial, subs: map[int]func(Theme){}}
}

// Get returns the current theme.
func (s *ThemeStore) Get() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// Palette returns the overlay palette for the current theme.
func (s *ThemeStore) Palette() Palette {
	return palettes[s.Get()]
}

// Set switches the theme and notifies subscribers when it changed.
func (s *ThemeStore) Set(t Theme) {
	if t != ThemeLight && t != ThemeDark {
		return
	}
	s.mu.Lock()
	if s.theme == t {
		s.mu.Unlock()
		return
	}
	s.theme = t
	subs := make([]func(Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
}

// Subscribe registers a change callback and returns its unsubscribe func.
func (s *ThemeStore) Subscribe(fn func(Theme)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
