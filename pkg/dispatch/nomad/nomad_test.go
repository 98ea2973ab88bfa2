package nomad

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/nomad/api"

	"github.com/the-maldridge/scbuild/pkg/dispatch"
)

// fakeNomad answers the few job endpoints the provider uses.
type fakeNomad struct {
	mu         sync.Mutex
	running    map[string]map[string]string
	dispatched []map[string]string
}

func (f *fakeNomad) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Nomad-Index", "1")
	w.Header().Set("X-Nomad-LastContact", "0")
	w.Header().Set("X-Nomad-KnownLeader", "true")
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)

	switch {
	case r.URL.Path == "/v1/jobs":
		stubs := []api.JobListStub{}
		for id := range f.running {
			if strings.HasPrefix(id, r.URL.Query().Get("prefix")) {
				stubs = append(stubs, api.JobListStub{ID: id, Type: "batch", Status: "running"})
			}
		}
		enc.Encode(stubs)
	case strings.HasSuffix(r.URL.Path, "/dispatch"):
		var req api.JobDispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.dispatched = append(f.dispatched, req.Meta)
		enc.Encode(api.JobDispatchResponse{DispatchedJobID: "scbuild/dispatch-1", EvalID: "e1"})
	case strings.HasPrefix(r.URL.Path, "/v1/job/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/job/")
		meta, ok := f.running[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		enc.Encode(api.Job{ID: &id, Meta: meta})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newProvider(t *testing.T, f *fakeNomad) *Provider {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	cfg := api.DefaultConfig()
	cfg.Address = ts.URL
	p, err := New(hclog.NewNullLogger(), cfg, "scbuild")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestDispatch(t *testing.T) {
	f := &fakeNomad{}
	p := newProvider(t, f)

	r := dispatch.Request{Contract: "farm-staking", PackagedProject: "https://example.org/farm-staking-0.0.0.source.json", NoWasmOpt: true}
	if err := p.Dispatch(r); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(f.dispatched) != 1 {
		t.Fatalf("dispatched %d jobs", len(f.dispatched))
	}
	meta := f.dispatched[0]
	if meta["contract"] != "farm-staking" || meta["no_wasm_opt"] != "true" || meta["packaged_project"] != r.PackagedProject {
		t.Errorf("meta = %v", meta)
	}
}

func TestDispatchRefusesDuplicate(t *testing.T) {
	r := dispatch.Request{Contract: "pair", ProjectGit: "https://example.org/dex.git", ProjectRev: "v1.2.0"}
	f := &fakeNomad{running: map[string]map[string]string{
		"scbuild/dispatch-1": r.ToMap(),
		"other/dispatch-1":   {"contract": "ignored"},
	}}
	p := newProvider(t, f)

	builds, err := p.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(builds) != 1 || !builds[0].Equal(r) {
		t.Errorf("List = %+v", builds)
	}

	err = p.Dispatch(r)
	if !errors.As(err, &dispatch.ErrBusy{}) {
		t.Errorf("Dispatch error = %v, want ErrBusy", err)
	}
	if len(f.dispatched) != 0 {
		t.Error("duplicate build dispatched")
	}
}
