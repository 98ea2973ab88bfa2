package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ListFiles returns the full paths of every file below root that the
// predicate accepts.  A nil predicate accepts everything.  Symlinks
// to files are listed, symlinks to directories are not descended
// into.  The result is sorted so that callers see the same order for
// the same tree.
func ListFiles(root string, pred Predicate) ([]string, error) {
	if pred == nil {
		pred = AcceptAll
	}

	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(p)
			if err != nil || info.IsDir() {
				return nil
			}
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if !pred(filepath.ToSlash(rel)) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
