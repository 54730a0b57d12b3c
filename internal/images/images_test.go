package images

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func ids(found []Image) []string {
	out := make([]string, 0, len(found))
	for _, img := range found {
		out = append(out, img.ID)
	}
	return out
}

func TestList(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "c.gif", "a.png", "b.jpg", "sub/z.png", "sub/deeper/y.webp", "a_dir/x.png")

	tests := []struct {
		name     string
		opts     ListOptions
		expected []string
	}{
		{
			name:     "flat listing skips directories",
			opts:     ListOptions{},
			expected: []string{"a.png", "b.jpg", "c.gif"},
		},
		{
			name:     "recursive listing sorts by relative path",
			opts:     ListOptions{Recursive: true},
			expected: []string{"a.png", "a_dir/x.png", "b.jpg", "c.gif", "sub/deeper/y.webp", "sub/z.png"},
		},
		{
			name:     "exclude patterns match identifiers",
			opts:     ListOptions{Recursive: true, Exclude: []string{"sub/**", "*.gif"}},
			expected: []string{"a.png", "a_dir/x.png", "b.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := List(root, tt.opts)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if got := ids(found); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestListIsRepeatable(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.png", "a.png", "c.png")

	first, err := List(root, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := List(root, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("listings differ: %v vs %v", first, second)
	}
	if first[0].Path != filepath.Join(root, "a.png") {
		t.Errorf("unexpected path %s", first[0].Path)
	}
}

func TestListSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "real.png", "dir/inner.png")
	if err := os.Symlink(filepath.Join(root, "real.png"), filepath.Join(root, "link.png")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	found, err := List(root, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"link.png", "real.png"}
	if got := ids(found); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestListInvalidPattern(t *testing.T) {
	if _, err := List(t.TempDir(), ListOptions{Exclude: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestListMissingRoot(t *testing.T) {
	if _, err := List(filepath.Join(t.TempDir(), "missing"), ListOptions{}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "photo.JPG", "anim.gif")

	img, err := Load(filepath.Join(root, "photo.JPG"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", img.MIMEType)
	}
	if img.Base64 != base64.StdEncoding.EncodeToString([]byte("photo.JPG")) {
		t.Errorf("unexpected base64 %s", img.Base64)
	}

	_, err = Load(filepath.Join(root, "anim.gif"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Expected ErrUnsupportedType, got %v", err)
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
		ok       bool
	}{
		{path: "a.png", expected: "image/png", ok: true},
		{path: "a.jpeg", expected: "image/jpeg", ok: true},
		{path: "a.WebP", expected: "image/webp", ok: true},
		{path: "a.gif", ok: false},
		{path: "noext", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := MIMEType(tt.path)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("MIMEType(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
