package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1broseidon/shellwm/internal/config"
	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/ipc"
	"github.com/1broseidon/shellwm/internal/wm"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    geometry.Point
		wantErr bool
	}{
		{"10,20", geometry.Point{X: 10, Y: 20}, false},
		{" 5 , -3 ", geometry.Point{X: 5, Y: -3}, false},
		{"10", geometry.Point{}, true},
		{"a,b", geometry.Point{}, true},
	}
	for _, tt := range tests {
		got, err := parsePoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePoint(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    geometry.Size
		wantErr bool
	}{
		{"800x600", geometry.Size{Width: 800, Height: 600}, false},
		{"800X600", geometry.Size{Width: 800, Height: 600}, false},
		{"0x600", geometry.Size{}, true},
		{"800", geometry.Size{}, true},
		{"wide x tall", geometry.Size{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Terminal", 0, "Terminal"},
		{"Terminal", 20, "Terminal"},
		{"File Manager Window", 10, "File Ma..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWriteWindowTable_StackOrder(t *testing.T) {
	data := &ipc.WindowsData{
		Windows: []wm.Window{
			{ID: "a", Title: "Terminal", Component: "Terminal", ZIndex: 100, Visible: true},
			{ID: "b", Title: "Files", Component: "FileManager", ZIndex: 102, Focused: true, Active: true, Visible: true},
			{ID: "c", Title: "Procs", Component: "ProcessManager", ZIndex: 101, Minimized: true},
		},
		Stack: []string{"b", "c", "a"},
	}

	var buf bytes.Buffer
	writeWindowTable(&buf, data, 0)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "Z") {
		t.Fatalf("expected header first, got %q", lines[0])
	}
	wantOrder := []string{"102  b", "101  c", "100  a"}
	for i, prefix := range wantOrder {
		if !strings.HasPrefix(lines[i+1], prefix) {
			t.Fatalf("row %d: expected prefix %q, got %q", i, prefix, lines[i+1])
		}
	}
	if !strings.Contains(lines[1], "normal,focused") || !strings.Contains(lines[2], "minimized") {
		t.Fatalf("expected state column, got:\n%s", buf.String())
	}
}

func TestWriteWindowTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeWindowTable(&buf, &ipc.WindowsData{}, 80)
	if strings.TrimSpace(buf.String()) != "no windows open" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceBuiltin, Name: "Terminal"}, "builtin:Terminal"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%#v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestWatchFiles(t *testing.T) {
	loaded := []string{"/home/u/.config/shellwm/conf.d/a.yaml", "/home/u/.config/shellwm/config.yaml"}
	if got := watchFiles(loaded); strings.Join(got, ",") != strings.Join(loaded, ",") {
		t.Fatalf("watchFiles(loaded) = %v, want %v", got, loaded)
	}

	t.Setenv(config.ConfigPathEnv, "/etc/shellwm/config.yaml")
	got := watchFiles(nil)
	if len(got) != 1 || got[0] != "/etc/shellwm/config.yaml" {
		t.Fatalf("watchFiles(nil) = %v, want the default config path", got)
	}
}
