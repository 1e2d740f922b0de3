package image

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "png", path: "capture.png"},
		{name: "jpeg", path: "shot.jpeg"},
		{name: "jpg", path: "shot.jpg"},
		{name: "webp", path: "frame.webp"},
		{name: "uppercase extension", path: "CAPTURE.PNG"},
		{name: "empty", path: "", wantErr: true},
		{name: "no extension", path: "capture", wantErr: true},
		{name: "unsupported", path: "vector.svg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid.png")

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xFF})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, g, b, _ := loaded.At(2, 2).RGBA()
	if r>>8 != 0x33 || g>>8 != 0x66 || b>>8 != 0x99 {
		t.Errorf("pixel = (%d, %d, %d), want (51, 102, 153)", r>>8, g>>8, b>>8)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "gone.png")); err == nil {
		t.Fatal("Load succeeded on missing file")
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots.png")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Load succeeded on directory")
	}
}
