package lang

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// Rust is the registry name of the Rust language.
const Rust = "rust"

func init() {
	Languages[Rust] = &Language{
		Name:       Rust,
		Extensions: []string{".rs"},
		lang:       sitter.NewLanguage(rust.Language()),
	}
}

var (
	unsafeExternRe = regexp.MustCompile(`\b(unsafe)\s+(extern)\b\s*(?:"[^"\n\\]*"\s*)?\{`)
	unsafeAttrRe   = regexp.MustCompile(`#!?\[\s*(unsafe)\s*\(`)
)

// RustMaskUnsafe blanks the Rust 2024 `unsafe` wrappers the grammar does not
// accept: the qualifier of `unsafe extern "ABI" { ... }` blocks and the
// `unsafe( ... )` around attributes such as `#[unsafe(no_mangle)]`. Masked
// bytes become spaces, so offsets and line numbers are unchanged. The
// returned set holds the byte offset of the `extern` keyword of every
// unsafe foreign block. When nothing matches, source is returned as is.
func RustMaskUnsafe(source []byte) ([]byte, map[uint]bool) {
	blocks := unsafeExternRe.FindAllSubmatchIndex(source, -1)
	attrs := unsafeAttrRe.FindAllSubmatchIndex(source, -1)
	if len(blocks) == 0 && len(attrs) == 0 {
		return source, nil
	}

	masked := make([]byte, len(source))
	copy(masked, source)

	var externs map[uint]bool
	for _, m := range blocks {
		blank(masked, m[2], m[3])
		if externs == nil {
			externs = make(map[uint]bool)
		}
		externs[uint(m[4])] = true
	}

	for _, m := range attrs {
		open := m[1] - 1
		closing := matchingParen(source, m[1])
		if closing < 0 || !closesAttribute(source, closing+1) {
			continue
		}
		blank(masked, m[2], m[3])
		blank(masked, open, open+1)
		blank(masked, closing, closing+1)
	}

	return masked, externs
}

func blank(b []byte, from, to int) {
	for i := from; i < to; i++ {
		b[i] = ' '
	}
}

// matchingParen returns the index of the ')' closing a '(' that ends just
// before start, skipping string literals, or -1.
func matchingParen(src []byte, start int) int {
	depth := 1
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '"':
			for i++; i < len(src) && src[i] != '"'; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func closesAttribute(src []byte, from int) bool {
	for i := from; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case ']':
			return true
		default:
			return false
		}
	}
	return false
}

// RustAttribute extracts the path and argument text of an attribute_item or
// inner_attribute_item node. The path is the attribute's path text with
// whitespace removed ("link", "no_mangle", "serde::skip"); args is the raw
// argument text, or "" when the attribute has none.
func RustAttribute(item *sitter.Node, source []byte) (path, args string) {
	var attr *sitter.Node
	for i := uint(0); i < item.NamedChildCount(); i++ {
		if c := item.NamedChild(i); c != nil && c.Kind() == "attribute" {
			attr = c
			break
		}
	}
	if attr == nil || attr.NamedChildCount() == 0 {
		return "", ""
	}

	// The path is the first named child: identifier, scoped_identifier, etc.
	pathNode := attr.NamedChild(0)
	path = strings.Join(strings.Fields(NodeText(pathNode, source)), "")

	if a := attr.ChildByFieldName("arguments"); a != nil {
		args = CollapseWhitespace(NodeText(a, source))
	} else if v := attr.ChildByFieldName("value"); v != nil {
		args = CollapseWhitespace(NodeText(v, source))
	}
	return path, args
}

// RustExternModifier returns the extern_modifier child of a foreign_mod_item
// or function_modifiers node, or nil.
func RustExternModifier(node *sitter.Node) *sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if c := node.NamedChild(i); c != nil && c.Kind() == "extern_modifier" {
			return c
		}
	}
	return nil
}

// RustForeignABI returns the unquoted ABI literal of a foreign_mod_item
// (`extern "C" { ... }` yields "C"). It returns "" when no literal is given.
func RustForeignABI(node *sitter.Node, source []byte) string {
	mod := RustExternModifier(node)
	if mod == nil {
		return ""
	}
	for i := uint(0); i < mod.NamedChildCount(); i++ {
		if lit := mod.NamedChild(i); lit != nil && lit.Kind() == "string_literal" {
			return unquote(NodeText(lit, source))
		}
	}
	return ""
}

// RustIsUnsafeFn reports whether a function_item carries the unsafe qualifier.
func RustIsUnsafeFn(node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		mods := node.Child(i)
		if mods == nil || mods.Kind() != "function_modifiers" {
			continue
		}
		for j := uint(0); j < mods.ChildCount(); j++ {
			if c := mods.Child(j); c != nil && c.Kind() == "unsafe" {
				return true
			}
		}
	}
	return false
}

// RustInnerAttributes returns the inner_attribute_item nodes (`#![...]`)
// declared directly in the body of a mod, trait, impl or fn item.
func RustInnerAttributes(node *sitter.Node) []*sitter.Node {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < body.NamedChildCount(); i++ {
		if c := body.NamedChild(i); c != nil && c.Kind() == "inner_attribute_item" {
			out = append(out, c)
		}
	}
	return out
}

// IsComment reports whether node is a line or block comment.
func IsComment(node *sitter.Node) bool {
	switch node.Kind() {
	case "line_comment", "block_comment":
		return true
	}
	return false
}

func unquote(lit string) string {
	if len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"' {
		return lit[1 : len(lit)-1]
	}
	return lit
}
