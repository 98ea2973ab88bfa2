// Package packaged converts project folders to and from the packaged
// source representation: a JSON document listing every source file
// with its relative path and raw content.
package packaged

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/the-maldridge/scbuild/pkg/manifest"
	"github.com/the-maldridge/scbuild/pkg/source"
)

// FromFolder captures the source files of folder, as selected by
// source.IsSourceFile.  Name and version come from the folder's own
// manifest and default when it declares none.
func FromFolder(folder string) (*Project, error) {
	name, version, err := manifest.NameAndVersion(folder)
	if err != nil {
		return nil, err
	}

	files, err := source.ListFiles(folder, source.IsSourceFile)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", folder, err)
	}

	p := Project{
		Name:    name,
		Version: version,
		Entries: make([]Entry, 0, len(files)),
	}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(folder, f)
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, Entry{Path: filepath.ToSlash(rel), Content: content})
	}
	return &p, nil
}

// Decode parses a serialized project.  Missing fields take their
// defaults rather than failing.
func Decode(data []byte) (*Project, error) {
	p := Project{
		Name:    manifest.DefaultName,
		Version: manifest.DefaultVersion,
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding packaged project: %w", err)
	}
	if p.Entries == nil {
		p.Entries = []Entry{}
	}
	return &p, nil
}

// Load reads a serialized project from a file.
func Load(file string) (*Project, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Encode serializes the project.
func (p *Project) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the serialized project to file.
func (p *Project) Save(file string) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0644)
}

// Unwrap writes every entry below folder, creating directories as
// needed and overwriting files that already exist.  Files in folder
// that are not part of the project are left alone.
func (p *Project) Unwrap(folder string) error {
	for _, e := range p.Entries {
		rel, err := cleanEntryPath(e.Path)
		if err != nil {
			return err
		}
		full := filepath.Join(folder, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(full, e.Content, 0644); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether both projects carry the same name, version
// and files, regardless of entry order.
func (p *Project) Equal(o *Project) bool {
	if p.Name != o.Name || p.Version != o.Version || len(p.Entries) != len(o.Entries) {
		return false
	}
	files := make(map[string][]byte, len(p.Entries))
	for _, e := range p.Entries {
		files[e.Path] = e.Content
	}
	for _, e := range o.Entries {
		c, ok := files[e.Path]
		if !ok || !bytes.Equal(c, e.Content) {
			return false
		}
	}
	return true
}

// Filename is the name under which a project is saved next to the
// other build outputs of a contract.
func Filename(contract, version string) string {
	return contract + "-" + version + ".source.json"
}

func cleanEntryPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	clean := path.Clean(p)
	if p == "" || path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("entry path %q escapes the project folder", p)
	}
	return clean, nil
}
