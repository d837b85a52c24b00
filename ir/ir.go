// Package ir holds the validated interface model of one crate.
//
// A [ComponentInterface] is built exactly once from a [meta.Group] via
// [ComponentInterface.AddMetadata]. The build is atomic: it either fully
// populates the interface or fails, leaving the interface empty.
package ir

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/ffikit/ffikit/meta"
)

// InterfaceError reports that a crate's metadata is structurally invalid.
// It wraps every violation found, not just the first.
type InterfaceError struct {
	Crate string
	err   error
}

func (e *InterfaceError) Error() string {
	return fmt.Sprintf("invalid interface for crate %q: %v", e.Crate, e.err)
}

func (e *InterfaceError) Unwrap() error { return e.err }

// Object is an opaque handle type together with its constructors and
// methods, reassembled from their separate metadata items.
type Object struct {
	meta.Object
	Constructors []meta.Constructor
	Methods      []meta.Method
}

// ComponentInterface is the validated, self-contained interface model of one
// crate: all exposed functions, records, enums and objects, with
// cross-references resolved and names guaranteed unique within the crate.
type ComponentInterface struct {
	crateName string
	namespace string

	functions []meta.Func
	records   []meta.Record
	enums     []meta.Enum
	objects   []*Object

	populated bool
}

// New returns an empty interface model for the named crate.
func New(crateName string) *ComponentInterface {
	return &ComponentInterface{crateName: crateName}
}

func (ci *ComponentInterface) CrateName() string { return ci.crateName }

// Namespace returns the declared namespace name, or "" before AddMetadata.
func (ci *ComponentInterface) Namespace() string { return ci.namespace }

func (ci *ComponentInterface) Functions() []meta.Func { return ci.functions }
func (ci *ComponentInterface) Records() []meta.Record { return ci.records }
func (ci *ComponentInterface) Enums() []meta.Enum     { return ci.enums }
func (ci *ComponentInterface) Objects() []*Object     { return ci.objects }

// Record returns the declared record of that name, if any.
func (ci *ComponentInterface) Record(name string) (meta.Record, bool) {
	for _, r := range ci.records {
		if r.Name == name {
			return r, true
		}
	}
	return meta.Record{}, false
}

// Enum returns the declared enum of that name, if any.
func (ci *ComponentInterface) Enum(name string) (meta.Enum, bool) {
	for _, e := range ci.enums {
		if e.Name == name {
			return e, true
		}
	}
	return meta.Enum{}, false
}

// Object returns the declared object of that name, if any.
func (ci *ComponentInterface) Object(name string) (*Object, bool) {
	for _, o := range ci.objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// IterTypes returns every type reference appearing anywhere in the
// interface, container element types included, in declaration order.
// Duplicates are preserved; callers that need a set must deduplicate.
func (ci *ComponentInterface) IterTypes() []meta.Type {
	var types []meta.Type
	var walk func(t *meta.Type)
	walk = func(t *meta.Type) {
		if t == nil {
			return
		}
		types = append(types, *t)
		walk(t.Key)
		walk(t.Elem)
	}
	walkParams := func(params []meta.FnParam) {
		for _, p := range params {
			walk(&p.Type)
		}
	}

	for _, r := range ci.records {
		for _, f := range r.Fields {
			walk(&f.Type)
		}
	}
	for _, e := range ci.enums {
		for _, v := range e.Variants {
			for _, f := range v.Fields {
				walk(&f.Type)
			}
		}
	}
	for _, o := range ci.objects {
		for _, c := range o.Constructors {
			walkParams(c.Params)
		}
		for _, m := range o.Methods {
			walkParams(m.Params)
			walk(m.Return)
		}
	}
	for _, f := range ci.functions {
		walkParams(f.Params)
		walk(f.Return)
	}
	return types
}

// declKind classifies a declared name for collision and reference checks.
type declKind int

const (
	declRecord declKind = iota
	declEnum
	declObject
)

func (k declKind) String() string {
	switch k {
	case declRecord:
		return "record"
	case declEnum:
		return "enum"
	case declObject:
		return "object"
	default:
		return "invalid"
	}
}

// AddMetadata folds a metadata group into the interface and validates the
// result. On error nothing is retained; the caller must abandon the whole
// crate rather than expose a partially built interface.
//
// AddMetadata must be called exactly once per interface.
func (ci *ComponentInterface) AddMetadata(g *meta.Group) error {
	if ci.populated {
		return fmt.Errorf("interface for crate %q already populated", ci.crateName)
	}
	if g.Namespace.CrateName != ci.crateName {
		return fmt.Errorf("metadata group for crate %q given to interface for crate %q", g.Namespace.CrateName, ci.crateName)
	}

	b := &builder{
		crate:   ci.crateName,
		decls:   map[string]declKind{},
		objects: map[string]*Object{},
	}
	for _, item := range g.Items {
		b.add(item)
	}
	b.validate()

	if b.errs != nil {
		return &InterfaceError{Crate: ci.crateName, err: b.errs.ErrorOrNil()}
	}

	ci.namespace = g.Namespace.Name
	ci.functions = b.functions
	ci.records = b.records
	ci.enums = b.enums
	ci.objects = b.objectList
	ci.populated = true
	return nil
}

type builder struct {
	crate string

	functions  []meta.Func
	records    []meta.Record
	enums      []meta.Enum
	objectList []*Object

	decls   map[string]declKind
	objects map[string]*Object

	// deferred until all declarations are known
	constructors []meta.Constructor
	methods      []meta.Method

	errs *multierror.Error
}

func (b *builder) errorf(format string, args ...any) {
	b.errs = multierror.Append(b.errs, fmt.Errorf(format, args...))
}

// declare registers a top-level type name, reporting clashes.
func (b *builder) declare(name string, kind declKind) bool {
	if name == "" {
		b.errorf("%v with empty name", kind)
		return false
	}
	if prev, ok := b.decls[name]; ok {
		b.errorf("duplicate declaration of %q (%v and %v)", name, prev, kind)
		return false
	}
	b.decls[name] = kind
	return true
}

func (b *builder) add(item meta.Item) {
	switch item := item.(type) {
	case meta.Func:
		if item.Name == "" {
			b.errorf("function with empty name")
			return
		}
		for _, f := range b.functions {
			if f.Name == item.Name {
				b.errorf("duplicate function %q", item.Name)
				return
			}
		}
		// Function names share the crate namespace with type names.
		if kind, clash := b.decls[item.Name]; clash {
			b.errorf("function %q collides with %v of the same name", item.Name, kind)
			return
		}
		b.functions = append(b.functions, item)
	case meta.Record:
		if !b.declare(item.Name, declRecord) {
			return
		}
		b.checkFields("record "+item.Name, item.Fields)
		b.records = append(b.records, item)
	case meta.Enum:
		if !b.declare(item.Name, declEnum) {
			return
		}
		seen := map[string]struct{}{}
		for _, v := range item.Variants {
			if v.Name == "" {
				b.errorf("enum %q has a variant with an empty name", item.Name)
				continue
			}
			if _, dup := seen[v.Name]; dup {
				b.errorf("enum %q has duplicate variant %q", item.Name, v.Name)
				continue
			}
			seen[v.Name] = struct{}{}
			b.checkFields(fmt.Sprintf("enum %v variant %v", item.Name, v.Name), v.Fields)
		}
		b.enums = append(b.enums, item)
	case meta.Object:
		if !b.declare(item.Name, declObject) {
			return
		}
		obj := &Object{Object: item}
		b.objects[item.Name] = obj
		b.objectList = append(b.objectList, obj)
	case meta.Constructor:
		b.constructors = append(b.constructors, item)
	case meta.Method:
		b.methods = append(b.methods, item)
	case meta.Namespace:
		// Consumed by the grouping pass; a stray one is a grouping bug.
		b.errorf("unexpected namespace item in group for crate %q", b.crate)
	default:
		b.errorf("unknown metadata item %T", item)
	}
}

func (b *builder) checkFields(owner string, fields []meta.Field) {
	seen := map[string]struct{}{}
	for _, f := range fields {
		if f.Name == "" {
			b.errorf("%v has a field with an empty name", owner)
			continue
		}
		if _, dup := seen[f.Name]; dup {
			b.errorf("%v has duplicate field %q", owner, f.Name)
			continue
		}
		seen[f.Name] = struct{}{}
	}
}

// validate resolves deferred cross-references once every declaration in the
// group has been seen.
func (b *builder) validate() {
	for _, c := range b.constructors {
		obj, ok := b.objects[c.ObjectName]
		if !ok {
			b.errorf("constructor %q names undeclared object %q", c.Name, c.ObjectName)
			continue
		}
		obj.Constructors = append(obj.Constructors, c)
		b.checkParams("constructor "+c.Name, c.Params)
		b.checkThrows("constructor "+c.Name, c.Throws)
	}
	for _, m := range b.methods {
		obj, ok := b.objects[m.ObjectName]
		if !ok {
			b.errorf("method %q names undeclared object %q", m.Name, m.ObjectName)
			continue
		}
		obj.Methods = append(obj.Methods, m)
		name := fmt.Sprintf("method %v.%v", m.ObjectName, m.Name)
		b.checkParams(name, m.Params)
		b.checkType(name, m.Return)
		b.checkThrows(name, m.Throws)
	}
	for _, f := range b.functions {
		b.checkParams("function "+f.Name, f.Params)
		b.checkType("function "+f.Name, f.Return)
		b.checkThrows("function "+f.Name, f.Throws)
	}
	for _, r := range b.records {
		for _, f := range r.Fields {
			b.checkType(fmt.Sprintf("record %v field %v", r.Name, f.Name), &f.Type)
		}
	}
	for _, e := range b.enums {
		for _, v := range e.Variants {
			for _, f := range v.Fields {
				b.checkType(fmt.Sprintf("enum %v variant %v field %v", e.Name, v.Name, f.Name), &f.Type)
			}
		}
	}
}

func (b *builder) checkParams(owner string, params []meta.FnParam) {
	seen := map[string]struct{}{}
	for _, p := range params {
		if p.Name == "" {
			b.errorf("%v has a parameter with an empty name", owner)
			continue
		}
		if _, dup := seen[p.Name]; dup {
			b.errorf("%v has duplicate parameter %q", owner, p.Name)
			continue
		}
		seen[p.Name] = struct{}{}
		b.checkType(fmt.Sprintf("%v parameter %v", owner, p.Name), &p.Type)
	}
}

// checkType walks a type reference and verifies every named type resolves to
// a declaration of the matching kind within the group.
func (b *builder) checkType(owner string, t *meta.Type) {
	if t == nil {
		return
	}
	switch t.Kind {
	case meta.TypeOptional, meta.TypeSequence:
		if t.Elem == nil {
			b.errorf("%v has a %v type with no element type", owner, t.Kind)
			return
		}
		b.checkType(owner, t.Elem)
	case meta.TypeMap:
		if t.Key == nil || t.Elem == nil {
			b.errorf("%v has a map type with a missing key or element type", owner)
			return
		}
		b.checkType(owner, t.Key)
		b.checkType(owner, t.Elem)
	case meta.TypeRecord, meta.TypeEnum, meta.TypeObject:
		kind, ok := b.decls[t.Name]
		if !ok {
			b.errorf("%v references undeclared type %q", owner, t.Name)
			return
		}
		want := map[meta.TypeKind]declKind{
			meta.TypeRecord: declRecord,
			meta.TypeEnum:   declEnum,
			meta.TypeObject: declObject,
		}[t.Kind]
		if kind != want {
			b.errorf("%v references %q as a %v, but it is declared as a %v", owner, t.Name, want, kind)
		}
	}
}

func (b *builder) checkThrows(owner, throws string) {
	if throws == "" {
		return
	}
	kind, ok := b.decls[throws]
	if !ok {
		b.errorf("%v throws undeclared type %q", owner, throws)
		return
	}
	if kind != declEnum {
		b.errorf("%v throws %q, which is a %v, not an error enum", owner, throws, kind)
		return
	}
	for _, e := range b.enums {
		if e.Name == throws && !e.IsError {
			b.errorf("%v throws enum %q, which is not declared as an error", owner, throws)
		}
	}
}
