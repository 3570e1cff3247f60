// Package config provides the editor's settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment (ZING_*)    │  ← Highest priority
//	├─────────────────────────────┤
//	│  2. Config file             │  ← TOML or YAML, chosen by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Basic Usage
//
//	cfg, err := config.Load("~/.config/zing/config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	editor := cfg.Editor()
//	fmt.Println(editor.TabSize)
//
// A missing config file is not an error; the defaults apply.
//
// # Configuration Files
//
//	[editor]
//	theme = "light"
//	fontSize = 16
//	tabSize = 2
//
//	[buffer]
//	maxUndoEntries = 1000
//	watchExternalChanges = true
//	reloadDebounce = "200ms"
//
//	[logging]
//	level = "debug"
//
// The same keys work in YAML.
//
// # Environment
//
// ZING_LOG_LEVEL, ZING_THEME, ZING_FONT_SIZE, ZING_TAB_SIZE and ZING_MAX_UNDO
// are short aliases. Any other ZING_SECTION_SETTING_NAME variable maps to
// section.settingName, e.g. ZING_EDITOR_WORD_WRAP=off.
//
// # Error Handling
//
//   - *loader.ParseError: a config file could not be parsed
//   - ErrTypeMismatch: a value has the wrong type (see *TypeError)
//   - ErrValidationFailed: a value is out of range (see *ValidationError)
package config
