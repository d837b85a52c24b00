// Package meta defines the raw interface metadata recovered from a compiled
// shared library, and groups it by owning crate.
//
// A compiled artifact may link several crates together. Each crate that
// exposes an interface embeds one namespace record plus one record per
// declared construct (function, record, enum, object, ...). The grouping
// pass reassembles those flat records into one [Group] per crate.
package meta

import "strings"

// TypeKind enumerates the shapes a [Type] can take.
type TypeKind int

const (
	TypeU8 TypeKind = iota
	TypeU16
	TypeU32
	TypeU64
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeF32
	TypeF64
	TypeBool
	TypeString
	TypeBytes
	TypeDuration
	TypeTimestamp
	TypeOptional // Elem set
	TypeSequence // Elem set
	TypeMap      // Key and Elem set
	TypeRecord   // Name set, resolved within the owning group
	TypeEnum     // Name set, resolved within the owning group
	TypeObject   // Name set, resolved within the owning group
)

var typeKindNames = map[TypeKind]string{
	TypeU8:        "u8",
	TypeU16:       "u16",
	TypeU32:       "u32",
	TypeU64:       "u64",
	TypeI8:        "i8",
	TypeI16:       "i16",
	TypeI32:       "i32",
	TypeI64:       "i64",
	TypeF32:       "f32",
	TypeF64:       "f64",
	TypeBool:      "bool",
	TypeString:    "string",
	TypeBytes:     "bytes",
	TypeDuration:  "duration",
	TypeTimestamp: "timestamp",
	TypeOptional:  "optional",
	TypeSequence:  "sequence",
	TypeMap:       "map",
	TypeRecord:    "record",
	TypeEnum:      "enum",
	TypeObject:    "object",
}

func (k TypeKind) String() string {
	if s, ok := typeKindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Type is a reference to a type as it appears in metadata. Named kinds
// (record, enum, object) refer to a declaration in the same group by name.
type Type struct {
	Kind TypeKind `msgpack:"kind"`
	Name string   `msgpack:"name,omitempty"`
	Key  *Type    `msgpack:"key,omitempty"`
	Elem *Type    `msgpack:"elem,omitempty"`
}

// IsNamed reports whether the type refers to a declaration by name.
func (t *Type) IsNamed() bool {
	return t.Kind == TypeRecord || t.Kind == TypeEnum || t.Kind == TypeObject
}

func (t *Type) String() string {
	switch t.Kind {
	case TypeOptional:
		return t.Elem.String() + "?"
	case TypeSequence:
		return "sequence<" + t.Elem.String() + ">"
	case TypeMap:
		return "map<" + t.Key.String() + ", " + t.Elem.String() + ">"
	case TypeRecord, TypeEnum, TypeObject:
		return t.Name
	default:
		return t.Kind.String()
	}
}

// Item is one atomic declared construct recovered from the artifact.
type Item interface {
	// Crate returns the name of the crate the item belongs to.
	Crate() string

	isItem()
}

// crateFromModulePath extracts the crate name from a module path like
// "core::api::v1" (the first path segment).
func crateFromModulePath(module string) string {
	crate, _, _ := strings.Cut(module, "::")
	return crate
}

// Namespace declares the identity of one crate's interface. Exactly one
// namespace item must exist per crate in an artifact.
type Namespace struct {
	CrateName string `msgpack:"crate_name"`
	Name      string `msgpack:"name"`
}

func (n Namespace) Crate() string { return n.CrateName }
func (Namespace) isItem()         {}

// FnParam is a single function, method or constructor parameter.
type FnParam struct {
	Name string `msgpack:"name"`
	Type Type   `msgpack:"type"`
}

// Func is a free-standing exported function.
type Func struct {
	ModulePath string    `msgpack:"module_path"`
	Name       string    `msgpack:"name"`
	Params     []FnParam `msgpack:"params,omitempty"`
	Return     *Type     `msgpack:"return,omitempty"`
	Throws     string    `msgpack:"throws,omitempty"` // name of an error enum, or ""
}

func (f Func) Crate() string { return crateFromModulePath(f.ModulePath) }
func (Func) isItem()         {}

// Field is a named record or variant field.
type Field struct {
	Name string `msgpack:"name"`
	Type Type   `msgpack:"type"`
}

// Record is a plain data structure with named fields.
type Record struct {
	ModulePath string  `msgpack:"module_path"`
	Name       string  `msgpack:"name"`
	Fields     []Field `msgpack:"fields,omitempty"`
}

func (r Record) Crate() string { return crateFromModulePath(r.ModulePath) }
func (Record) isItem()         {}

// Variant is one alternative of an enum, optionally carrying fields.
type Variant struct {
	Name   string  `msgpack:"name"`
	Fields []Field `msgpack:"fields,omitempty"`
}

// Enum is a tagged union. Enums with IsError set may be named as the
// throws-type of functions and methods.
type Enum struct {
	ModulePath string    `msgpack:"module_path"`
	Name       string    `msgpack:"name"`
	Variants   []Variant `msgpack:"variants,omitempty"`
	IsError    bool      `msgpack:"is_error,omitempty"`
}

func (e Enum) Crate() string { return crateFromModulePath(e.ModulePath) }
func (Enum) isItem()         {}

// Object is an opaque handle type. Its constructors and methods arrive as
// separate items referring to it by name.
type Object struct {
	ModulePath string `msgpack:"module_path"`
	Name       string `msgpack:"name"`
}

func (o Object) Crate() string { return crateFromModulePath(o.ModulePath) }
func (Object) isItem()         {}

// Constructor creates an instance of an object.
type Constructor struct {
	ModulePath string    `msgpack:"module_path"`
	ObjectName string    `msgpack:"object_name"`
	Name       string    `msgpack:"name"`
	Params     []FnParam `msgpack:"params,omitempty"`
	Throws     string    `msgpack:"throws,omitempty"`
}

func (c Constructor) Crate() string { return crateFromModulePath(c.ModulePath) }
func (Constructor) isItem()         {}

// Method is an instance method of an object.
type Method struct {
	ModulePath string    `msgpack:"module_path"`
	ObjectName string    `msgpack:"object_name"`
	Name       string    `msgpack:"name"`
	Params     []FnParam `msgpack:"params,omitempty"`
	Return     *Type     `msgpack:"return,omitempty"`
	Throws     string    `msgpack:"throws,omitempty"`
}

func (m Method) Crate() string { return crateFromModulePath(m.ModulePath) }
func (Method) isItem()         {}
