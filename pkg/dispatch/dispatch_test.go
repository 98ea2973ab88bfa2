package dispatch

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/config"
)

type recorder struct {
	got  []Request
	busy bool
}

func (r *recorder) Dispatch(req Request) error {
	if r.busy {
		return ErrBusy{}
	}
	r.got = append(r.got, req)
	return nil
}

func (r *recorder) List() ([]Request, error) { return r.got, nil }

func TestMapRoundTrip(t *testing.T) {
	r := Request{Contract: "farm-staking", ProjectGit: "https://example.org/dex.git", ProjectRev: "v2", NoWasmOpt: true}
	m := r.ToMap()
	if m[MetaNoWasmOpt] != "true" || m[MetaVerify] != "false" || m[MetaProjectRev] != "v2" {
		t.Errorf("ToMap = %v", m)
	}
	if back := FromMap(m); !back.Equal(r) {
		t.Errorf("FromMap = %+v, want %+v", back, r)
	}
	if FromMap(map[string]string{MetaNoWasmOpt: "maybe"}).NoWasmOpt {
		t.Error("malformed flag read as true")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		r  Request
		ok bool
	}{
		{Request{Contract: "pair", PackagedProject: "p.json"}, true},
		{Request{Contract: "pair", ProjectGit: "g"}, true},
		{Request{PackagedProject: "p.json"}, false},
		{Request{Contract: "pair"}, false},
		{Request{Contract: "pair", PackagedProject: "p.json", ProjectGit: "g"}, false},
	}
	for i, c := range cases {
		if err := c.r.Validate(); (err == nil) != c.ok {
			t.Errorf("case %d: Validate = %v", i, err)
		}
	}
}

func TestConstructUnknown(t *testing.T) {
	if _, err := Construct("carrier-pigeon", config.NewConfig()); err == nil {
		t.Error("unknown provider constructed")
	}
}

func TestService(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(NewService(hclog.NewNullLogger(), rec).HTTPEntry())
	defer ts.Close()

	post := func(r Request) int {
		body, _ := json.Marshal(r)
		resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := post(Request{Contract: "pair", PackagedProject: "p.json"}); code != http.StatusAccepted {
		t.Errorf("POST = %d", code)
	}
	if code := post(Request{Contract: "pair"}); code != http.StatusBadRequest {
		t.Errorf("POST of an invalid request = %d", code)
	}
	rec.busy = true
	if code := post(Request{Contract: "pair", ProjectGit: "g"}); code != http.StatusServiceUnavailable {
		t.Errorf("POST while busy = %d", code)
	}

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var builds []Request
	if err := json.NewDecoder(resp.Body).Decode(&builds); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(builds) != 1 || builds[0].Contract != "pair" {
		t.Errorf("GET = %+v", builds)
	}
}
