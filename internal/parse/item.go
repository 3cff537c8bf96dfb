package parse

// ItemKind identifies the kind of a top-level declaration.
type ItemKind string

const (
	KindFunction     ItemKind = "fn"
	KindModule       ItemKind = "mod"
	KindStatic       ItemKind = "static"
	KindConst        ItemKind = "const"
	KindStruct       ItemKind = "struct"
	KindEnum         ItemKind = "enum"
	KindUnion        ItemKind = "union"
	KindTrait        ItemKind = "trait"
	KindImpl         ItemKind = "impl"
	KindForeignBlock ItemKind = "extern"
	KindOther        ItemKind = "other"
)

// Attribute is a #[...] tag attached to an item. Only Path is inspected by
// the scanner; Args is kept for diagnostics.
type Attribute struct {
	Path string
	Args string
	Line int
}

// Is reports whether the attribute path is exactly the single identifier name.
func (a Attribute) Is(name string) bool {
	return a.Path == name
}

// Item is a top-level declaration of a parsed file. Each kind keeps its
// attributes in its own slot; Attributes gives uniform access to it.
type Item interface {
	Kind() ItemKind
	Attributes() []Attribute
	Line() int
}

type itemBase struct {
	line int
}

func (b itemBase) Line() int { return b.line }

// Function is a free function. Unsafe is set for `unsafe fn`.
type Function struct {
	itemBase
	Name   string
	Unsafe bool
	Attrs  []Attribute
}

func (f *Function) Kind() ItemKind          { return KindFunction }
func (f *Function) Attributes() []Attribute { return f.Attrs }

// Module is a `mod` declaration, inline or out-of-line.
type Module struct {
	itemBase
	Name  string
	Attrs []Attribute
}

func (m *Module) Kind() ItemKind          { return KindModule }
func (m *Module) Attributes() []Attribute { return m.Attrs }

// Static is a `static` item.
type Static struct {
	itemBase
	Attrs []Attribute
}

func (s *Static) Kind() ItemKind          { return KindStatic }
func (s *Static) Attributes() []Attribute { return s.Attrs }

// Const is a `const` item.
type Const struct {
	itemBase
	Attrs []Attribute
}

func (c *Const) Kind() ItemKind          { return KindConst }
func (c *Const) Attributes() []Attribute { return c.Attrs }

// Struct is a `struct` item.
type Struct struct {
	itemBase
	Attrs []Attribute
}

func (s *Struct) Kind() ItemKind          { return KindStruct }
func (s *Struct) Attributes() []Attribute { return s.Attrs }

// Enum is an `enum` item.
type Enum struct {
	itemBase
	Attrs []Attribute
}

func (e *Enum) Kind() ItemKind          { return KindEnum }
func (e *Enum) Attributes() []Attribute { return e.Attrs }

// Union is a `union` item.
type Union struct {
	itemBase
	Attrs []Attribute
}

func (u *Union) Kind() ItemKind          { return KindUnion }
func (u *Union) Attributes() []Attribute { return u.Attrs }

// Trait is a `trait` item.
type Trait struct {
	itemBase
	Attrs []Attribute
}

func (t *Trait) Kind() ItemKind          { return KindTrait }
func (t *Trait) Attributes() []Attribute { return t.Attrs }

// Impl is an inherent or trait `impl` block.
type Impl struct {
	itemBase
	Attrs []Attribute
}

func (i *Impl) Kind() ItemKind          { return KindImpl }
func (i *Impl) Attributes() []Attribute { return i.Attrs }

// ForeignBlock is an `extern "ABI" { ... }` block. It has no attribute slot:
// attributes written on it, #[link] included, are not reported. Unsafe is
// set for the `unsafe extern` form.
type ForeignBlock struct {
	itemBase
	ABI    string
	Unsafe bool
}

func (f *ForeignBlock) Kind() ItemKind        { return KindForeignBlock }
func (*ForeignBlock) Attributes() []Attribute { return nil }

// Other covers declarations without an attribute slot: type aliases, use
// declarations, macro invocations, extern crates.
type Other struct {
	itemBase
}

func (o *Other) Kind() ItemKind        { return KindOther }
func (*Other) Attributes() []Attribute { return nil }
