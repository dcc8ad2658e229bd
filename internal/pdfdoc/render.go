package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDPI is the page rasterization resolution.
const DefaultDPI = 200

// Poppler renders pages by shelling out to pdftoppm.
type Poppler struct {
	Path string
	// Bin overrides the pdftoppm executable.
	Bin string
}

func NewPoppler(path string) (*Poppler, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not found in PATH: %w", err)
	}
	return &Poppler{Path: path}, nil
}

// Render rasterizes the page at a 0-based index.
func (r *Poppler) Render(ctx context.Context, index, dpi int) (image.Image, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	bin := r.Bin
	if bin == "" {
		bin = "pdftoppm"
	}

	tmpDir, err := os.MkdirTemp("", "pdfcorpus-render-")
	if err != nil {
		return nil, fmt.Errorf("mkdir tmp: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	page := strconv.Itoa(index + 1)
	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, bin,
		"-png", "-r", strconv.Itoa(dpi), "-q", "-singlefile",
		"-f", page, "-l", page,
		r.Path, prefix)
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8", "LC_ALL=C.UTF-8")
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("pdftoppm page %s: %w", page, ctx.Err())
	}
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %s failed: %w: %s", page, err, strings.TrimSpace(string(out)))
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page %s: %w", page, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page %s: %w", page, err)
	}
	return img, nil
}
