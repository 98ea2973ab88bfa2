// Package receiver exposes build outputs and packaged projects over
// HTTP.
package receiver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/artifacts"
	"github.com/the-maldridge/scbuild/pkg/ledger"
	"github.com/the-maldridge/scbuild/pkg/packaged"
)

// maxUpload bounds the size of an uploaded packaged project.
const maxUpload = 64 << 20

var errBadName = errors.New("invalid file name")

// New returns a receiver that serves the output tree at p.  The
// ledger may be nil, in which case no sources are served.
func New(l hclog.Logger, p string, lg *ledger.Ledger) *Receiver {
	x := Receiver{
		l:      l.Named("receiver"),
		ledger: lg,
	}
	// If this fails, something is dreadfully wrong.
	x.path, _ = filepath.Abs(p)
	return &x
}

// HTTPEntry provides the chi mountpoint for the receiver into the
// routing tree.
func (r *Receiver) HTTPEntry() chi.Router {
	rout := chi.NewRouter()
	rout.Get("/artifacts", r.httpArtifacts)
	rout.Get("/contracts/{contract}/{file}", r.httpContractFile)
	rout.Put("/packages", r.httpPutPackage)
	rout.Get("/packages/{file}", r.httpGetPackage)
	rout.Get("/sources/{hash}", r.httpSource)
	rout.Get("/verifications/{contract}", r.httpVerifications)
	return rout
}

func (r *Receiver) httpArtifacts(w http.ResponseWriter, req *http.Request) {
	m, err := artifacts.LoadManifest(filepath.Join(r.path, artifacts.ManifestFilename))
	if os.IsNotExist(err) {
		r.httpJSONError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		r.httpJSONError(w, http.StatusInternalServerError, err)
		return
	}
	r.httpJSON(w, m)
}

func (r *Receiver) httpContractFile(w http.ResponseWriter, req *http.Request) {
	contract := chi.URLParam(req, "contract")
	file := chi.URLParam(req, "file")
	if !validName(contract) || !validName(file) {
		r.httpJSONError(w, http.StatusBadRequest, errBadName)
		return
	}
	http.ServeFile(w, req, filepath.Join(r.path, contract, file))
}

func (r *Receiver) httpGetPackage(w http.ResponseWriter, req *http.Request) {
	file := chi.URLParam(req, "file")
	if !validName(file) {
		r.httpJSONError(w, http.StatusBadRequest, errBadName)
		return
	}
	http.ServeFile(w, req, filepath.Join(r.path, PackagesDir, file))
}

// httpPutPackage stores an uploaded packaged project after checking
// that it decodes.
func (r *Receiver) httpPutPackage(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	name := req.URL.Query().Get("name")
	if !validName(name) {
		r.httpJSONError(w, http.StatusBadRequest, errBadName)
		return
	}
	data, err := io.ReadAll(io.LimitReader(req.Body, maxUpload))
	if err != nil {
		r.httpJSONError(w, http.StatusInternalServerError, err)
		return
	}
	p, err := packaged.Decode(data)
	if err != nil {
		r.httpJSONError(w, http.StatusBadRequest, err)
		return
	}

	fPath := filepath.Join(r.path, PackagesDir, name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(fPath), 0755); err != nil {
		r.l.Warn("Error creating directory", "path", filepath.Dir(fPath), "err", err)
		r.httpJSONError(w, http.StatusInternalServerError, err)
		return
	}
	if err := os.WriteFile(fPath, data, 0644); err != nil {
		r.l.Warn("Error writing package", "path", fPath, "err", err)
		r.httpJSONError(w, http.StatusInternalServerError, err)
		return
	}
	r.l.Info("Stored packaged project", "path", fPath, "name", p.Name, "version", p.Version, "entries", len(p.Entries))
	w.WriteHeader(http.StatusCreated)
}

func (r *Receiver) httpSource(w http.ResponseWriter, req *http.Request) {
	if r.ledger == nil {
		r.httpJSONError(w, http.StatusNotFound, errors.New("no ledger configured"))
		return
	}
	hash := chi.URLParam(req, "hash")
	p, ok, err := r.ledger.Source(hash)
	if err != nil {
		r.httpJSONError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		r.httpJSONError(w, http.StatusNotFound, errors.New("no sources for "+hash))
		return
	}
	data, err := p.Encode()
	if err != nil {
		r.httpJSONError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (r *Receiver) httpVerifications(w http.ResponseWriter, req *http.Request) {
	if r.ledger == nil {
		r.httpJSONError(w, http.StatusNotFound, errors.New("no ledger configured"))
		return
	}
	contract := chi.URLParam(req, "contract")
	h, err := r.ledger.History(contract)
	if err != nil {
		r.httpJSONError(w, http.StatusInternalServerError, err)
		return
	}
	if len(h) == 0 {
		r.httpJSONError(w, http.StatusNotFound, errors.New("no verifications of "+contract))
		return
	}
	r.httpJSON(w, h)
}

func (r *Receiver) httpJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		r.l.Warn("Error encoding JSON response", "err", err)
	}
}

// httpJSONError returns an error as JSON.
func (r *Receiver) httpJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := struct {
		Error string
	}{
		Error: err.Error(),
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		r.l.Warn("Error encoding JSON error response")
	}
}

func validName(n string) bool {
	return n != "" && n != "." && n != ".." && !strings.ContainsAny(n, `/\`)
}
