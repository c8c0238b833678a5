package download

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSave(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantFile string
	}{
		{name: "plain name", fileName: "contrat-location-7.pdf", wantFile: "contrat-location-7.pdf"},
		{name: "relative path is flattened", fileName: "../../etc/passwd", wantFile: "passwd"},
		{name: "windows separators", fileName: `exports\export-users-1.csv`, wantFile: "export-users-1.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "downloads")
			d := NewDir(dir)

			got, err := d.Save(tt.fileName, []byte("content"))
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			want := filepath.Join(dir, tt.wantFile)
			if got != want {
				t.Errorf("Save() path = %q, want %q", got, want)
			}

			data, err := os.ReadFile(want)
			if err != nil {
				t.Fatalf("reading saved file: %v", err)
			}
			if string(data) != "content" {
				t.Errorf("saved content = %q, want %q", data, "content")
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	d := NewDir(t.TempDir())

	if _, err := d.Save("a.csv", []byte("first")); err != nil {
		t.Fatal(err)
	}
	path, err := d.Save("a.csv", []byte("second"))
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}
}

func TestSaveInvalidName(t *testing.T) {
	d := NewDir(t.TempDir())

	for _, name := range []string{"", "/", ".."} {
		if _, err := d.Save(name, []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}
