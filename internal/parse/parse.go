// Package parse reads Rust source files and turns them into top-level items
// using tree-sitter.
package parse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/phobologic/ffiscan/internal/lang"
)

var (
	// ErrDecode marks a file whose bytes could not be read as UTF-8 text.
	ErrDecode = errors.New("not valid UTF-8")
	// ErrSyntax marks a file the grammar could not parse cleanly.
	ErrSyntax = errors.New("syntax error")
)

// SourceFile is one enumerated file after reading and parsing.
//
// Unreadable or undecodable files get empty Text and zero Lines; they still
// count structurally. A file with ParseErr set has no Items.
type SourceFile struct {
	Path      string
	Text      string
	Lines     int
	DecodeErr error
	ParseErr  error
	Items     []Item
}

// Parsed reports whether the file produced a syntax tree.
func (sf *SourceFile) Parsed() bool {
	return sf.ParseErr == nil
}

// File reads path and parses it. It never fails: read and decode problems
// leave the content empty, grammar problems set ParseErr.
func File(ctx context.Context, parser *sitter.Parser, path string) *SourceFile {
	data, err := os.ReadFile(path)
	if err != nil {
		sf := Source(ctx, parser, path, nil)
		sf.DecodeErr = fmt.Errorf("reading %s: %w", path, err)
		return sf
	}
	return Source(ctx, parser, path, data)
}

// Source parses already-read bytes. Bytes that are not valid UTF-8 are
// treated as empty content.
func Source(ctx context.Context, parser *sitter.Parser, path string, data []byte) *SourceFile {
	sf := &SourceFile{Path: path}
	if !utf8.Valid(data) {
		sf.DecodeErr = fmt.Errorf("%s: %w", path, ErrDecode)
		data = nil
	}
	sf.Text = string(data)
	sf.Lines = CountLines(sf.Text)

	if len(data) == 0 {
		return sf
	}

	if err := ctx.Err(); err != nil {
		sf.ParseErr = fmt.Errorf("parsing %s: %w", path, err)
		return sf
	}

	// Parsed bytes differ from Text only in blanked unsafe wrappers.
	masked, unsafeExterns := lang.RustMaskUnsafe(data)
	tree := parser.Parse(masked, nil)
	if tree == nil {
		sf.ParseErr = fmt.Errorf("parsing %s: %w", path, ErrSyntax)
		return sf
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		sf.ParseErr = fmt.Errorf("%s: %w", path, ErrSyntax)
		return sf
	}

	sf.Items = extractItems(root, masked, unsafeExterns)
	return sf
}

// CountLines counts lines the way Rust's str::lines does: a trailing newline
// does not start a new line, and empty text has zero lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// extractItems walks the root's direct children. Outer attributes are
// sibling nodes preceding the item they decorate, so they are collected until
// the next declaration claims them.
func extractItems(root *sitter.Node, source []byte, unsafeExterns map[uint]bool) []Item {
	var (
		items   []Item
		pending []Attribute
	)

	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if node == nil || lang.IsComment(node) {
			continue
		}

		switch node.Kind() {
		case "shebang":
			continue
		case "attribute_item":
			pending = append(pending, toAttribute(node, source))
			continue
		case "inner_attribute_item":
			// File-level #![...] belongs to the crate, not to an item.
			continue
		}

		items = append(items, newItem(node, source, pending, unsafeExterns))
		pending = nil
	}

	return items
}

func newItem(node *sitter.Node, source []byte, outer []Attribute, unsafeExterns map[uint]bool) Item {
	base := itemBase{line: int(node.StartPosition().Row) + 1}

	switch node.Kind() {
	case "function_item":
		return &Function{
			itemBase: base,
			Name:     fieldText(node, "name", source),
			Unsafe:   lang.RustIsUnsafeFn(node),
			Attrs:    withInner(outer, node, source),
		}
	case "mod_item":
		return &Module{itemBase: base, Name: fieldText(node, "name", source), Attrs: withInner(outer, node, source)}
	case "static_item":
		return &Static{itemBase: base, Attrs: outer}
	case "const_item":
		return &Const{itemBase: base, Attrs: outer}
	case "struct_item":
		return &Struct{itemBase: base, Attrs: outer}
	case "enum_item":
		return &Enum{itemBase: base, Attrs: outer}
	case "union_item":
		return &Union{itemBase: base, Attrs: outer}
	case "trait_item":
		return &Trait{itemBase: base, Attrs: withInner(outer, node, source)}
	case "impl_item":
		return &Impl{itemBase: base, Attrs: withInner(outer, node, source)}
	case "foreign_mod_item":
		block := &ForeignBlock{itemBase: base, ABI: lang.RustForeignABI(node, source)}
		if mod := lang.RustExternModifier(node); mod != nil {
			block.Unsafe = unsafeExterns[mod.StartByte()]
		}
		return block
	default:
		return &Other{itemBase: base}
	}
}

func withInner(outer []Attribute, node *sitter.Node, source []byte) []Attribute {
	inner := lang.RustInnerAttributes(node)
	if len(inner) == 0 {
		return outer
	}
	attrs := make([]Attribute, 0, len(outer)+len(inner))
	attrs = append(attrs, outer...)
	for _, n := range inner {
		attrs = append(attrs, toAttribute(n, source))
	}
	return attrs
}

func toAttribute(node *sitter.Node, source []byte) Attribute {
	path, args := lang.RustAttribute(node, source)
	return Attribute{Path: path, Args: args, Line: int(node.StartPosition().Row) + 1}
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	if n := node.ChildByFieldName(field); n != nil {
		return lang.NodeText(n, source)
	}
	return ""
}
