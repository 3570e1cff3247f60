package loader

import (
	"errors"
	"strings"
	"testing"
)

func TestYAMLLoader_Load(t *testing.T) {
	memfs := memFS{"/config.yaml": `
editor:
  theme: light
  tabSize: 8
  showLineNumbers: false
logging:
  level: warn
`}

	config, err := NewYAMLLoaderWithFS(memfs, "/config.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"editor.theme", "light"},
		{"editor.tabSize", 8},
		{"editor.showLineNumbers", false},
		{"logging.level", "warn"},
	}
	for _, tt := range tests {
		got, ok := Lookup(config, tt.path)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v (%T)", tt.path, got, got, tt.want, tt.want)
		}
	}
}

func TestYAMLLoader_Empty(t *testing.T) {
	config, err := NewYAMLLoader("").LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if config == nil || len(config) != 0 {
		t.Errorf("empty document = %v, want empty map", config)
	}
}

func TestYAMLLoader_LoadNonExistent(t *testing.T) {
	config, err := NewYAMLLoaderWithFS(memFS{}, "/missing.yml").Load()
	if err != nil || config != nil {
		t.Errorf("missing file = %v, %v", config, err)
	}
}

func TestYAMLLoader_LoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "editor:\n  theme: [unclosed\n"},
		{"not a mapping", "- one\n- two\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memfs := memFS{"/bad.yaml": tt.content}
			_, err := NewYAMLLoaderWithFS(memfs, "/bad.yaml").Load()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if perr.Path != "/bad.yaml" {
				t.Errorf("Path = %q", perr.Path)
			}
		})
	}
}
