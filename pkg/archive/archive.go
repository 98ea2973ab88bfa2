// Package archive packs directories into deflate compressed zip
// files.
package archive

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"

	"github.com/the-maldridge/scbuild/pkg/source"
)

// DefaultMaxSize is the ceiling above which downstream services may
// refuse an archive.
const DefaultMaxSize = 1024 * 1024

// Archiver builds zip archives and warns about oversized results.
type Archiver struct {
	l       hclog.Logger
	maxSize int64
}

// New returns an archiver that warns about archives larger than
// maxSize bytes.  A non-positive maxSize uses DefaultMaxSize.
func New(l hclog.Logger, maxSize int64) *Archiver {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Archiver{
		l:       l.Named("archive"),
		maxSize: maxSize,
	}
}

// MaxSize returns the configured ceiling.
func (a *Archiver) MaxSize() int64 {
	return a.maxSize
}

// BuildArchive writes every file below dir accepted by pred into
// the zip file out, keyed by its slash separated path relative to
// dir.  The size of the written archive is returned.  Exceeding the
// ceiling is logged but not treated as an error.
func (a *Archiver) BuildArchive(out, dir string, pred source.Predicate) (int64, error) {
	files, err := source.ListFiles(dir, pred)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	zw := zip.NewWriter(f)
	for _, full := range files {
		if err := addFile(zw, dir, full); err != nil {
			zw.Close()
			f.Close()
			return 0, err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	info, err := os.Stat(out)
	if err != nil {
		return 0, err
	}
	size := info.Size()
	a.l.Info("Created archive", "file", out, "size", size, "entries", len(files))
	if size > a.maxSize {
		a.l.Warn("File is too large, downstream services such as the build verification service may reject it",
			"file", out, "size", size, "max", a.maxSize)
	}
	return size, nil
}

func addFile(zw *zip.Writer, dir, full string) error {
	info, err := os.Stat(full)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(dir, full)
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	in, err := os.Open(full)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

// ListEntries returns the sorted entry names of a zip file.
func ListEntries(file string) ([]string, error) {
	r, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Names returns the conventional source and output archive names of
// a contract.
func Names(contract, version string) (src, output string) {
	return contract + "-src-" + version + ".zip", contract + "-output-" + version + ".zip"
}
