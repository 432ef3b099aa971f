package reader

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kvanlaer/ndview/internal/axis"
)

func TestRegistryList(t *testing.T) {
	names := NewRegistry().List()
	want := []string{"blobs", "gradient", "imagedir", "noise"}

	if len(names) != len(want) {
		t.Fatalf("registry lists %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestRegistryOpenUnknown(t *testing.T) {
	if _, err := NewRegistry().Open("nope", ""); err == nil {
		t.Error("expected error for unknown reader")
	}
}

func TestDetectEmptyPathFallsBackToBlobs(t *testing.T) {
	name, path, err := NewRegistry().Detect("")
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if name != "blobs" || path != "" {
		t.Errorf("detect(\"\") = %q, %q", name, path)
	}
}

func TestDetectDirectory(t *testing.T) {
	dir := t.TempDir()
	name, path, err := NewRegistry().Detect(dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if name != "imagedir" || path != dir {
		t.Errorf("detect(dir) = %q, %q", name, path)
	}
}

func TestDetectImageFileUsesItsDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "frame.png")
	writePNG(t, file, 4, 4)

	name, path, err := NewRegistry().Detect(file)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if name != "imagedir" || path != dir {
		t.Errorf("detect(file) = %q, %q", name, path)
	}
}

func TestSyntheticReadersAreDeterministic(t *testing.T) {
	for _, name := range []string{"gradient", "blobs", "noise"} {
		r, err := NewRegistry().Open(name, "")
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		idx := axis.Zero(r.Axes()).With("t", 3)
		a, err := r.ReadFrame(context.Background(), idx)
		if err != nil {
			t.Fatalf("%s read: %v", name, err)
		}
		b, err := r.ReadFrame(context.Background(), idx)
		if err != nil {
			t.Fatalf("%s reread: %v", name, err)
		}
		for i := range a.Pix {
			if a.Pix[i] != b.Pix[i] {
				t.Errorf("%s: frame at t=3 not reproducible (pixel %d)", name, i)
				break
			}
		}
		r.Close()
	}
}

func TestGradientAxes(t *testing.T) {
	g := NewGradient()
	axes := g.Axes()
	if len(axes) != 2 || axes[0].Name != "t" || axes[1].Name != "z" {
		t.Fatalf("gradient axes = %v", axes)
	}
	if axes[0].Kind != axis.Time || axes[1].Kind != axis.Z {
		t.Error("gradient axis kinds wrong")
	}
}

func TestGradientFrameTagged(t *testing.T) {
	g := NewGradient()
	idx := axis.Index{"t": 7, "z": 2}
	f, err := g.ReadFrame(context.Background(), idx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !f.Index.Equal(idx) {
		t.Errorf("frame tagged with %v, want %v", f.Index, idx)
	}
	w, h := g.Size()
	if f.W != w || f.H != h {
		t.Errorf("frame %dx%d, reader size %dx%d", f.W, f.H, w, h)
	}
}

func TestBlobsChannelsDiffer(t *testing.T) {
	b := NewBlobs()
	c0, err := b.ReadFrame(context.Background(), axis.Index{"t": 0, "c": 0})
	if err != nil {
		t.Fatal(err)
	}
	c1, err := b.ReadFrame(context.Background(), axis.Index{"t": 0, "c": 1})
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range c0.Pix {
		if c0.Pix[i] != c1.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("channel 0 and 1 render identically")
	}
}

func TestNaturalLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"img2.png", "img10.png", true},
		{"img10.png", "img2.png", false},
		{"img2.png", "img2.png", false},
		{"a1b2.png", "a1b10.png", true},
		{"apple.png", "banana.png", true},
		{"img.png", "img1.png", true},
	}
	for _, c := range cases {
		if got := naturalLess(c.a, c.b); got != c.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestImageDirSequence(t *testing.T) {
	dir := t.TempDir()
	// deliberately created out of lexical order
	writePNG(t, filepath.Join(dir, "frame10.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "frame2.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "frame1.png"), 4, 4)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644)

	r, err := OpenImageDir(dir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	axes := r.Axes()
	if len(axes) != 1 || axes[0].Size != 3 {
		t.Fatalf("axes = %v", axes)
	}
	if r.files[0] != "frame1.png" || r.files[1] != "frame2.png" || r.files[2] != "frame10.png" {
		t.Errorf("natural order broken: %v", r.files)
	}

	f, err := r.ReadFrame(context.Background(), axis.Index{"t": 1})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if f.Channels != 3 || f.W != 4 || f.H != 4 {
		t.Errorf("frame shape %dx%dx%d", f.W, f.H, f.Channels)
	}
}

func TestImageDirSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "b.png"), 8, 8)

	r, err := OpenImageDir(dir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := r.ReadFrame(context.Background(), axis.Index{"t": 1}); err == nil {
		t.Error("expected error for mismatching frame size")
	}
}

func TestImageDirEmpty(t *testing.T) {
	if _, err := OpenImageDir(t.TempDir()); err == nil {
		t.Error("expected error for directory without images")
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
