package packaged

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// Fetch loads a packaged project from an http(s) URL, a file:// URL
// or a plain filesystem path.
func Fetch(l hclog.Logger, location string) (*Project, error) {
	var data []byte
	var err error

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		data, err = fetchHTTP(location)
	case strings.HasPrefix(location, "file://"):
		data, err = os.ReadFile(strings.TrimPrefix(location, "file://"))
	default:
		data, err = os.ReadFile(location)
	}
	if err != nil {
		l.Error("Could not fetch packaged project", "location", location, "error", err)
		return nil, err
	}

	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	l.Debug("Fetched packaged project", "location", location, "name", p.Name, "version", p.Version, "entries", len(p.Entries))
	return p, nil
}

func fetchHTTP(url string) ([]byte, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
