package config

import "time"

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// or the toggles below to update configuration values.

// Theme values for EditorConfig.Theme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Font size bounds enforced by IncreaseFontSize, DecreaseFontSize and
// Validate.
const (
	MinFontSize = 8.0
	MaxFontSize = 32.0
)

// EditorConfig provides type-safe access to editor settings.
type EditorConfig struct {
	// Theme is "dark" or "light".
	Theme string

	// FontSize is the font size in points.
	FontSize float64

	// LineSpacing is the line height multiplier.
	LineSpacing float64

	// ShowLineNumbers shows the line number gutter.
	ShowLineNumbers bool

	// WordWrap wraps long lines.
	WordWrap bool

	// TabSize is the number of spaces a tab is equal to.
	TabSize int

	// UseSpaces inserts spaces when pressing Tab.
	UseSpaces bool
}

// BufferConfig provides type-safe access to buffer settings.
type BufferConfig struct {
	// MaxUndoEntries bounds each buffer's undo stack; 0 is unbounded.
	MaxUndoEntries int

	// WatchExternalChanges reloads or flags files changed on disk.
	WatchExternalChanges bool

	// ReloadDebounce is how long a file must be quiet before it is
	// reconciled.
	ReloadDebounce time.Duration
}

// LoggingConfig provides type-safe access to logging settings.
type LoggingConfig struct {
	// Level is the minimum level logged: debug, info, warn or error.
	Level string
}

// Editor returns type-safe access to editor settings.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		Theme:           c.getStringOr("editor.theme", ThemeDark),
		FontSize:        c.getFloatOr("editor.fontSize", 14),
		LineSpacing:     c.getFloatOr("editor.lineSpacing", 1.2),
		ShowLineNumbers: c.getBoolOr("editor.showLineNumbers", true),
		WordWrap:        c.getBoolOr("editor.wordWrap", true),
		TabSize:         c.getIntOr("editor.tabSize", 4),
		UseSpaces:       c.getBoolOr("editor.useSpaces", true),
	}
}

// Buffer returns type-safe access to buffer settings.
func (c *Config) Buffer() BufferConfig {
	return BufferConfig{
		MaxUndoEntries:       c.getIntOr("buffer.maxUndoEntries", 0),
		WatchExternalChanges: c.getBoolOr("buffer.watchExternalChanges", true),
		ReloadDebounce:       c.getDurationOr("buffer.reloadDebounce", 100*time.Millisecond),
	}
}

// Logging returns type-safe access to logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr("logging.level", "info"),
	}
}

// ToggleTheme switches between the dark and light themes.
func (c *Config) ToggleTheme() {
	next := ThemeLight
	if c.Editor().Theme == ThemeLight {
		next = ThemeDark
	}
	_ = c.Set("editor.theme", next)
}

// IncreaseFontSize grows the font by one point, up to MaxFontSize.
func (c *Config) IncreaseFontSize() {
	_ = c.Set("editor.fontSize", min(c.Editor().FontSize+1, MaxFontSize))
}

// DecreaseFontSize shrinks the font by one point, down to MinFontSize.
func (c *Config) DecreaseFontSize() {
	_ = c.Set("editor.fontSize", max(c.Editor().FontSize-1, MinFontSize))
}

// ToggleLineNumbers shows or hides line numbers.
func (c *Config) ToggleLineNumbers() {
	_ = c.Set("editor.showLineNumbers", !c.Editor().ShowLineNumbers)
}

// ToggleWordWrap turns word wrap on or off.
func (c *Config) ToggleWordWrap() {
	_ = c.Set("editor.wordWrap", !c.Editor().WordWrap)
}
