// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/ffiscan/internal/model"
	"github.com/phobologic/ffiscan/internal/usage"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a report into TOON format. extended adds the derived
// figures, the usage table and, when present, the hotspot table.
func Encode(r model.Report, extended bool) string {
	s := r.Stats
	parts := []string{
		field("total_lines", strconv.Itoa(s.TotalLines)),
		field("extern_c", strconv.Itoa(s.ExternC)),
		field("link_attr", strconv.Itoa(s.LinkAttr)),
		field("no_mangle", strconv.Itoa(s.NoMangle)),
		field("unsafe_count", strconv.Itoa(s.UnsafeBlocks)),
		field("unsafe_fn_count", strconv.Itoa(s.UnsafeFns)),
		field("ffi_file_count", strconv.Itoa(s.FFIFiles)),
		field("max_depth", strconv.Itoa(s.MaxDepth)),
		field("classification", string(s.Classification)),
	}

	if !extended {
		return strings.Join(parts, "\n")
	}

	e := r.Extras
	parts = append(parts,
		field("files", strconv.Itoa(e.Files)),
		field("parse_failures", strconv.Itoa(e.ParseFailures)),
		field("decode_failures", strconv.Itoa(e.DecodeFailures)),
		field("average_file_depth", fmt.Sprintf("%.4f", e.AverageFileDepth)),
		field("ffi_density_per_kloc", fmt.Sprintf("%.4f", e.FFIDensityPerKLOC)),
	)

	var usageRows [][]string
	for _, role := range usage.Roles() {
		usageRows = append(usageRows, []string{role, strconv.Itoa(e.Usage[role])})
	}
	parts = append(parts, formatTabular("usage", []string{"role", "files"}, usageRows))

	if len(e.Hotspots) > 0 {
		var rows [][]string
		for i := range e.Hotspots {
			h := &e.Hotspots[i]
			rows = append(rows, []string{
				h.Path,
				strconv.Itoa(h.Score),
				strconv.Itoa(h.ExternC),
				strconv.Itoa(h.LinkAttr),
				strconv.Itoa(h.NoMangle),
				strconv.Itoa(h.UnsafeBlocks),
				strconv.Itoa(h.UnsafeFns),
			})
		}
		parts = append(parts, formatTabular("hotspots",
			[]string{"path", "score", "extern_c", "link_attr", "no_mangle", "unsafe_count", "unsafe_fn_count"}, rows))
	}

	return strings.Join(parts, "\n")
}

func field(key, value string) string {
	return key + ": " + encodeValue(value)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
