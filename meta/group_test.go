package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupingPreservesDiscoveryOrder(t *testing.T) {
	require := require.New(t)

	items := []Item{
		Namespace{CrateName: "core", Name: "core"},
		Func{ModulePath: "core", Name: "ping"},
		Namespace{CrateName: "net", Name: "net"},
		Func{ModulePath: "net::client", Name: "connect"},
		Record{ModulePath: "core::model", Name: "Point", Fields: []Field{
			{Name: "x", Type: Type{Kind: TypeF64}},
			{Name: "y", Type: Type{Kind: TypeF64}},
		}},
	}

	gs := NewGroupSet(items)
	require.NoError(gs.Assign(items))
	require.Equal(2, gs.Len())

	groups := gs.Groups()
	require.Equal("core", groups[0].Namespace.CrateName)
	require.Equal("net", groups[1].Namespace.CrateName)

	// Items stay in artifact order within their group.
	require.Len(groups[0].Items, 2)
	require.Equal("ping", groups[0].Items[0].(Func).Name)
	require.Equal("Point", groups[0].Items[1].(Record).Name)

	require.Len(groups[1].Items, 1)
	require.Equal("connect", groups[1].Items[0].(Func).Name)
}

func TestGroupingUnattributableItem(t *testing.T) {
	require := require.New(t)

	items := []Item{
		Namespace{CrateName: "core", Name: "core"},
		Func{ModulePath: "rogue", Name: "lost"},
	}

	gs := NewGroupSet(items)
	err := gs.Assign(items)
	var nsErr *NamespaceError
	require.ErrorAs(err, &nsErr)
	require.Equal("rogue", nsErr.Crate)
}

func TestGroupingConflictingNamespaces(t *testing.T) {
	require := require.New(t)

	items := []Item{
		Namespace{CrateName: "core", Name: "core"},
		Namespace{CrateName: "core", Name: "kore"},
	}

	gs := NewGroupSet(items)
	require.Equal(1, gs.Len())
	err := gs.Assign(items)
	var nsErr *NamespaceError
	require.ErrorAs(err, &nsErr)
	require.Equal("core", nsErr.Crate)
}

func TestGroupingDuplicateIdenticalNamespace(t *testing.T) {
	require := require.New(t)

	items := []Item{
		Namespace{CrateName: "core", Name: "core"},
		Namespace{CrateName: "core", Name: "core"},
		Func{ModulePath: "core", Name: "ping"},
	}

	gs := NewGroupSet(items)
	require.NoError(gs.Assign(items))
	require.Equal(1, gs.Len())
}

func TestCrateFromModulePath(t *testing.T) {
	require := require.New(t)

	require.Equal("core", Func{ModulePath: "core::api::v1"}.Crate())
	require.Equal("core", Func{ModulePath: "core"}.Crate())
}

func TestTypeString(t *testing.T) {
	require := require.New(t)

	typ := Type{Kind: TypeMap,
		Key:  &Type{Kind: TypeString},
		Elem: &Type{Kind: TypeSequence, Elem: &Type{Kind: TypeOptional, Elem: &Type{Kind: TypeRecord, Name: "Point"}}},
	}
	require.Equal("map<string, sequence<Point?>>", typ.String())
}
