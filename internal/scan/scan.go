// Package scan extracts interop and unsafety signals from parsed files using
// a configurable set of detectors.
package scan

import (
	"strings"

	"github.com/phobologic/ffiscan/internal/model"
	"github.com/phobologic/ffiscan/internal/parse"
)

// ItemDetector inspects one top-level item of a successfully parsed file.
type ItemDetector interface {
	Name() string
	DetectItem(item parse.Item, sig *model.FileSignals)
}

// TextDetector inspects the raw text of every file, parsed or not.
type TextDetector interface {
	Name() string
	DetectText(text string, sig *model.FileSignals)
}

// Scanner applies its detectors to source files.
type Scanner struct {
	items []ItemDetector
	text  []TextDetector
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithItemDetector appends an item detector.
func WithItemDetector(d ItemDetector) Option {
	return func(s *Scanner) { s.items = append(s.items, d) }
}

// WithTextDetector appends a text detector.
func WithTextDetector(d TextDetector) Option {
	return func(s *Scanner) { s.text = append(s.text, d) }
}

// New returns a Scanner with only the given detectors.
func New(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default returns a Scanner with the standard detector set.
func Default() *Scanner {
	return New(
		WithItemDetector(ForeignBlockDetector{}),
		WithItemDetector(AttributeDetector{}),
		WithItemDetector(UnsafeFnDetector{}),
		WithTextDetector(UnsafeTextDetector{}),
	)
}

// Detectors returns the names of all configured detectors.
func (s *Scanner) Detectors() []string {
	names := make([]string, 0, len(s.items)+len(s.text))
	for _, d := range s.items {
		names = append(names, d.Name())
	}
	for _, d := range s.text {
		names = append(names, d.Name())
	}
	return names
}

// ScanFile returns the signals found in sf. Item detectors only see files
// that parsed; text detectors see every file.
func (s *Scanner) ScanFile(sf *parse.SourceFile) model.FileSignals {
	var sig model.FileSignals

	if sf.Parsed() {
		for _, item := range sf.Items {
			for _, d := range s.items {
				d.DetectItem(item, &sig)
			}
		}
	}

	for _, d := range s.text {
		d.DetectText(sf.Text, &sig)
	}

	return sig
}

// ForeignBlockDetector counts `extern "C"` blocks.
type ForeignBlockDetector struct{}

func (ForeignBlockDetector) Name() string { return "extern_c" }

func (ForeignBlockDetector) DetectItem(item parse.Item, sig *model.FileSignals) {
	if fb, ok := item.(*parse.ForeignBlock); ok && fb.ABI == "C" {
		sig.ExternC++
		sig.Flagged = true
	}
}

// AttributeDetector counts #[link] and #[no_mangle] attributes.
type AttributeDetector struct{}

func (AttributeDetector) Name() string { return "attributes" }

func (AttributeDetector) DetectItem(item parse.Item, sig *model.FileSignals) {
	for _, attr := range item.Attributes() {
		switch {
		case attr.Is("link"):
			sig.LinkAttr++
			sig.Flagged = true
		case attr.Is("no_mangle"):
			sig.NoMangle++
			sig.Flagged = true
		}
	}
}

// UnsafeFnDetector counts top-level `unsafe fn` declarations.
type UnsafeFnDetector struct{}

func (UnsafeFnDetector) Name() string { return "unsafe_fn" }

func (UnsafeFnDetector) DetectItem(item parse.Item, sig *model.FileSignals) {
	if fn, ok := item.(*parse.Function); ok && fn.Unsafe {
		sig.UnsafeFns++
		sig.Flagged = true
	}
}

// unsafeBlockMarker is matched literally. Occurrences inside comments and
// strings are counted; `unsafe{` and other spacings are not.
const unsafeBlockMarker = "unsafe {"

// UnsafeTextDetector is a textual approximation of unsafe usage. It counts
// occurrences of "unsafe {" and flags any file mentioning "unsafe" at all.
type UnsafeTextDetector struct{}

func (UnsafeTextDetector) Name() string { return "unsafe_text" }

func (UnsafeTextDetector) DetectText(text string, sig *model.FileSignals) {
	sig.UnsafeBlocks += strings.Count(text, unsafeBlockMarker)
	if strings.Contains(text, "unsafe") {
		sig.Flagged = true
	}
}
