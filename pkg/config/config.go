// Package config loads the scbuild configuration: defaults, then an
// optional YAML file, then SCBUILD_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/the-maldridge/scbuild/pkg/archive"
	"github.com/the-maldridge/scbuild/pkg/graph"
)

// NewConfig returns a config object with default structures
// initialized.  The config can be loaded from other sources to
// override the defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Archive: ArchiveConfig{
			SourceMax: archive.DefaultMaxSize,
			OutputMax: archive.DefaultMaxSize,
		},
		Resolver: ResolverConfig{
			MockMarker: graph.DefaultMockMarker,
		},
		Tools: ToolsConfig{
			Cargo:       "cargo",
			Wasm2Wat:    "wasm2wat",
			WasmObjdump: "wasm-objdump",
		},
		Ledger: LedgerConfig{
			Backend: "bitcask",
			Path:    "scbuild-ledger",
		},
		HTTP: HTTPConfig{
			Bind:   ":8080",
			Output: "output",
		},
		Nomad: NomadConfig{
			Job: "scbuild",
		},
	}
}

// Load reads a .env file if there is one, then builds the config from
// the defaults, the file named by SCBUILD_CONFIG and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := NewConfig()
	if f := os.Getenv("SCBUILD_CONFIG"); f != "" {
		if err := c.LoadFromFile(f); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromFile does as the name suggests, and loads the config from a
// file.  Keys missing from the file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides values from SCBUILD_* environment variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"SCBUILD_LOG_LEVEL":    &c.LogLevel,
		"SCBUILD_SCRATCH_ROOT": &c.ScratchRoot,
		"SCBUILD_MOCK_MARKER":  &c.Resolver.MockMarker,
		"SCBUILD_CARGO":        &c.Tools.Cargo,
		"SCBUILD_LEDGER":       &c.Ledger.Backend,
		"SCBUILD_LEDGER_PATH":  &c.Ledger.Path,
		"SCBUILD_HTTP_BIND":    &c.HTTP.Bind,
		"SCBUILD_OUTPUT":       &c.HTTP.Output,
		"SCBUILD_NOMAD_JOB":    &c.Nomad.Job,
	}
	for k, v := range strs {
		if e, ok := os.LookupEnv(k); ok {
			*v = e
		}
	}

	ints := map[string]*int64{
		"SCBUILD_SOURCE_MAX": &c.Archive.SourceMax,
		"SCBUILD_OUTPUT_MAX": &c.Archive.OutputMax,
	}
	for k, v := range ints {
		e, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(e, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		*v = n
	}
	return nil
}
