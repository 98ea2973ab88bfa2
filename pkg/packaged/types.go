package packaged

// An Entry is one file captured into a packaged project.  Content is
// carried base64 encoded when serialized.
type Entry struct {
	Path    string `json:"path"`
	Content []byte `json:"content"`
}

// A Project is a portable, self-contained copy of the source files of
// a project folder.
type Project struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}
