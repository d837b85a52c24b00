package meta

import "fmt"

// NamespaceError reports a disagreement between the grouping passes about a
// crate's namespace, or an item that cannot be attributed to any crate.
type NamespaceError struct {
	Crate  string
	Reason string
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("crate %q: %v", e.Crate, e.Reason)
}

// Group is the namespace of one crate plus every item attributed to it, in
// the order the items appeared in the artifact.
type Group struct {
	Namespace Namespace
	Items     []Item
}

// GroupSet is an insertion-ordered mapping from crate name to [Group].
// Crates keep the order in which their namespaces were first seen.
type GroupSet struct {
	order  []string
	groups map[string]*Group
}

// NewGroupSet runs the first grouping pass: it creates one empty group per
// [Namespace] item, preserving first-seen order. Non-namespace items are
// ignored here; they are attributed by [GroupSet.Assign].
//
// A repeated namespace declaration for the same crate is tolerated at this
// stage as long as it is identical; conflicts surface in Assign.
func NewGroupSet(items []Item) *GroupSet {
	gs := &GroupSet{groups: make(map[string]*Group)}
	for _, item := range items {
		ns, ok := item.(Namespace)
		if !ok {
			continue
		}
		if _, exists := gs.groups[ns.CrateName]; exists {
			continue
		}
		gs.order = append(gs.order, ns.CrateName)
		gs.groups[ns.CrateName] = &Group{Namespace: ns}
	}
	return gs
}

// Assign runs the second grouping pass: every item is attributed to the
// group of its crate, preserving the input order within each group.
//
// Assign fails if an item belongs to a crate no namespace was declared for,
// or if two namespace declarations for the same crate disagree. No item is
// ever dropped silently.
func (gs *GroupSet) Assign(items []Item) error {
	for _, item := range items {
		if ns, ok := item.(Namespace); ok {
			have := gs.groups[ns.CrateName]
			if have == nil {
				// Cannot happen for input also passed to NewGroupSet,
				// but Assign must not trust that.
				return &NamespaceError{Crate: ns.CrateName, Reason: "namespace declared only in the second pass"}
			}
			if have.Namespace != ns {
				return &NamespaceError{
					Crate:  ns.CrateName,
					Reason: fmt.Sprintf("conflicting namespace declarations %q and %q", have.Namespace.Name, ns.Name),
				}
			}
			continue
		}
		group := gs.groups[item.Crate()]
		if group == nil {
			return &NamespaceError{Crate: item.Crate(), Reason: fmt.Sprintf("item %T has no namespace declaration", item)}
		}
		group.Items = append(group.Items, item)
	}
	return nil
}

// Groups returns all groups in discovery order.
func (gs *GroupSet) Groups() []*Group {
	res := make([]*Group, 0, len(gs.order))
	for _, crate := range gs.order {
		res = append(res, gs.groups[crate])
	}
	return res
}

// Len returns the number of discovered crates.
func (gs *GroupSet) Len() int { return len(gs.order) }
