// Package model defines core data structures for ffiscan.
package model

// Classification is the repository-level verdict.
type Classification string

const (
	FFIRelated Classification = "FFI-related"
	PureRust   Classification = "Pure Rust"
)

// FileSignals holds the interop and unsafety signals found in one file.
type FileSignals struct {
	ExternC      int
	LinkAttr     int
	NoMangle     int
	UnsafeBlocks int
	UnsafeFns    int

	// Flagged is set by any single trigger; triggers are OR'd, not counted.
	Flagged bool
}

// Score is the sum of all counted signals in the file.
func (s FileSignals) Score() int {
	return s.ExternC + s.LinkAttr + s.NoMangle + s.UnsafeBlocks + s.UnsafeFns
}

// RepoStats is the aggregate for a single run.
type RepoStats struct {
	TotalLines     int            `json:"total_lines" yaml:"total_lines"`
	ExternC        int            `json:"extern_c" yaml:"extern_c"`
	LinkAttr       int            `json:"link_attr" yaml:"link_attr"`
	NoMangle       int            `json:"no_mangle" yaml:"no_mangle"`
	UnsafeBlocks   int            `json:"unsafe_count" yaml:"unsafe_count"`
	UnsafeFns      int            `json:"unsafe_fn_count" yaml:"unsafe_fn_count"`
	FFIFiles       int            `json:"ffi_file_count" yaml:"ffi_file_count"`
	MaxDepth       int            `json:"max_depth" yaml:"max_depth"`
	Classification Classification `json:"classification" yaml:"classification"`
}

// Classify derives the verdict from extern_c, link_attr and no_mangle only.
// The unsafe counters never participate, even though they can flag a file.
func Classify(s RepoStats) Classification {
	if s.ExternC > 0 || s.LinkAttr > 0 || s.NoMangle > 0 {
		return FFIRelated
	}
	return PureRust
}

// Hotspot is a file ranked by how many signals it carries.
type Hotspot struct {
	Path         string `json:"path" yaml:"path"`
	Score        int    `json:"score" yaml:"score"`
	ExternC      int    `json:"extern_c" yaml:"extern_c"`
	LinkAttr     int    `json:"link_attr" yaml:"link_attr"`
	NoMangle     int    `json:"no_mangle" yaml:"no_mangle"`
	UnsafeBlocks int    `json:"unsafe_count" yaml:"unsafe_count"`
	UnsafeFns    int    `json:"unsafe_fn_count" yaml:"unsafe_fn_count"`
}

// Extras holds derived figures reported only in extended mode.
type Extras struct {
	Files             int            `json:"files" yaml:"files"`
	ParseFailures     int            `json:"parse_failures" yaml:"parse_failures"`
	DecodeFailures    int            `json:"decode_failures" yaml:"decode_failures"`
	AverageFileDepth  float64        `json:"average_file_depth" yaml:"average_file_depth"`
	FFIDensityPerKLOC float64        `json:"ffi_density_per_kloc" yaml:"ffi_density_per_kloc"`
	Usage             map[string]int `json:"usage" yaml:"usage"`
	Hotspots          []Hotspot      `json:"hotspots,omitempty" yaml:"hotspots,omitempty"`
}

// Report is the complete result of a run, ready for rendering.
type Report struct {
	Root   string
	Stats  RepoStats
	Extras Extras
}
