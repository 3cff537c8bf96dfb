// Package usage assigns a coarse usage role to a file from its directory
// segments (kernel, driver, sandbox, library, other).
package usage

import (
	"path"
	"strings"
)

// Roles in priority order. A file takes the first role any of its
// directory segments normalizes to.
const (
	Kernel  = "kernel"
	Driver  = "driver"
	Sandbox = "sandbox"
	Library = "library"
	Other   = "other"
)

var priority = []string{Kernel, Driver, Sandbox, Library}

var normalize = map[string]string{
	"kernel":    Kernel,
	"driver":    Driver,
	"drivers":   Driver,
	"drv":       Driver,
	"sandbox":   Sandbox,
	"sandboxes": Sandbox,
	"lib":       Library,
	"libs":      Library,
	"library":   Library,
}

// Roles returns every role name, "other" last.
func Roles() []string {
	return append(append([]string(nil), priority...), Other)
}

// Classify returns the usage role of a slash-separated relative file path.
// Only directory segments are considered; the file name is not.
func Classify(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return Other
	}

	seen := make(map[string]struct{})
	for _, seg := range strings.Split(dir, "/") {
		if role, ok := normalize[strings.ToLower(seg)]; ok {
			seen[role] = struct{}{}
		}
	}
	for _, role := range priority {
		if _, ok := seen[role]; ok {
			return role
		}
	}
	return Other
}
