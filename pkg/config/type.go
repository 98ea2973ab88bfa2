package config

// Config represents the complete application configuration that
// scbuild supports.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// ScratchRoot is where per run scratch directories are created.
	ScratchRoot string `yaml:"scratch_root"`

	Archive  ArchiveConfig  `yaml:"archive"`
	Resolver ResolverConfig `yaml:"resolver"`
	Tools    ToolsConfig    `yaml:"tools"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	HTTP     HTTPConfig     `yaml:"http"`
	Nomad    NomadConfig    `yaml:"nomad"`
}

// ArchiveConfig holds the size ceilings past which an archive is
// reported.  Oversized archives are still written.
type ArchiveConfig struct {
	SourceMax int64 `yaml:"source_max"`
	OutputMax int64 `yaml:"output_max"`
}

// ResolverConfig configures local dependency resolution.
type ResolverConfig struct {
	// MockMarker excludes packages whose name contains it.
	MockMarker string `yaml:"mock_marker"`
}

// ToolsConfig names the external tool binaries.
type ToolsConfig struct {
	Cargo       string `yaml:"cargo"`
	Wasm2Wat    string `yaml:"wasm2wat"`
	WasmObjdump string `yaml:"wasm_objdump"`
}

// LedgerConfig selects the storage backing the verification ledger.
type LedgerConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// HTTPConfig configures the artifact service.
type HTTPConfig struct {
	Bind   string `yaml:"bind"`
	Output string `yaml:"output"`
}

// NomadConfig configures remote builds.
type NomadConfig struct {
	Job       string `yaml:"job"`
	Namespace string `yaml:"namespace"`
}
