package reader

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/frame"
)

// ImageDir treats a directory of image files, ordered by natural name
// sort, as a time sequence of RGB frames. All files must share the
// dimensions of the first one; mismatching frames fail at read time.
type ImageDir struct {
	dir   string
	files []string
	w, h  int
}

func OpenImageDir(dir string) (*ImageDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif":
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	sort.Slice(files, func(i, j int) bool { return naturalLess(files[i], files[j]) })

	r := &ImageDir{dir: dir, files: files}
	img, err := r.decode(0)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	r.w, r.h = b.Dx(), b.Dy()
	return r, nil
}

func (r *ImageDir) Axes() []axis.Axis {
	return []axis.Axis{{Name: "t", Size: len(r.files), Kind: axis.Time}}
}

func (r *ImageDir) Size() (int, int) { return r.w, r.h }
func (r *ImageDir) Close() error     { return nil }

func (r *ImageDir) decode(i int) (image.Image, error) {
	f, err := os.Open(filepath.Join(r.dir, r.files[i]))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func (r *ImageDir) ReadFrame(ctx context.Context, idx axis.Index) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := idx.Get("t")
	if t < 0 || t >= len(r.files) {
		return nil, fmt.Errorf("frame %d outside sequence of %d files", t, len(r.files))
	}
	img, err := r.decode(t)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.files[t], err)
	}
	b := img.Bounds()
	if b.Dx() != r.w || b.Dy() != r.h {
		return nil, fmt.Errorf("%s: size %dx%d differs from sequence %dx%d",
			r.files[t], b.Dx(), b.Dy(), r.w, r.h)
	}
	f := frame.New(r.w, r.h, 3)
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			cr, cg, cb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.Set(x, y, 0, float64(cr)/65535.0)
			f.Set(x, y, 1, float64(cg)/65535.0)
			f.Set(x, y, 2, float64(cb)/65535.0)
		}
	}
	return f.Tag(idx), nil
}

// naturalLess orders "img2.png" before "img10.png".
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if unicode.IsDigit(rune(a[0])) && unicode.IsDigit(rune(b[0])) {
			na, ra := leadingInt(a)
			nb, rb := leadingInt(b)
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingInt(s string) (int, string) {
	i := 0
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}
