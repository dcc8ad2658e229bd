package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

var ErrNoPDFs = errors.New("no PDF files found")

// FindPDFs lists every .pdf below dir, sorted, keeping names that contain
// filter (case-insensitive) when filter is set.
func FindPDFs(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	filter = strings.ToLower(filter)
	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		if filter != "" && !strings.Contains(strings.ToLower(d.Name()), filter) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPDFs, dir)
	}
	sort.Strings(files)
	return files, nil
}

// Source is an opened PDF. Renderer is nil when pages cannot be rasterized.
type Source struct {
	Doc      pdfdoc.Document
	Renderer pdfdoc.Renderer
	Close    func() error
}

type OpenFunc func(path string) (Source, error)

// OpenFile opens a PDF from disk. Rendering uses pdftoppm when installed.
func OpenFile(path string) (Source, error) {
	f, err := pdfdoc.Open(path)
	if err != nil {
		return Source{}, err
	}
	src := Source{Doc: f, Close: f.Close}
	if r, err := pdfdoc.NewPoppler(path); err == nil {
		src.Renderer = r
	}
	return src, nil
}
