package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ffikit/ffikit/config"
	"github.com/ffikit/ffikit/ir"
	"github.com/ffikit/ffikit/meta"
)

func testCI(t *testing.T) *ir.ComponentInterface {
	t.Helper()

	ci := ir.New("geometry")
	err := ci.AddMetadata(&meta.Group{
		Namespace: meta.Namespace{CrateName: "geometry", Name: "geometry"},
		Items: []meta.Item{
			meta.Record{ModulePath: "geometry", Name: "Point", Fields: []meta.Field{
				{Name: "x", Type: meta.Type{Kind: meta.TypeF64}},
				{Name: "y", Type: meta.Type{Kind: meta.TypeF64}},
			}},
			meta.Enum{ModulePath: "geometry", Name: "Shape", Variants: []meta.Variant{
				{Name: "Circle", Fields: []meta.Field{{Name: "radius", Type: meta.Type{Kind: meta.TypeF64}}}},
				{Name: "Empty"},
			}},
			meta.Enum{ModulePath: "geometry", Name: "GeomError", IsError: true, Variants: []meta.Variant{
				{Name: "Degenerate"},
			}},
			meta.Object{ModulePath: "geometry", Name: "Canvas"},
			meta.Constructor{ModulePath: "geometry", ObjectName: "Canvas", Name: "new",
				Params: []meta.FnParam{{Name: "size", Type: meta.Type{Kind: meta.TypeU32}}}},
			meta.Method{ModulePath: "geometry", ObjectName: "Canvas", Name: "plot",
				Params: []meta.FnParam{{Name: "at", Type: meta.Type{Kind: meta.TypeRecord, Name: "Point"}}},
				Throws: "GeomError"},
			meta.Func{ModulePath: "geometry", Name: "distance",
				Params: []meta.FnParam{
					{Name: "a", Type: meta.Type{Kind: meta.TypeRecord, Name: "Point"}},
					{Name: "b", Type: meta.Type{Kind: meta.TypeRecord, Name: "Point"}},
				},
				Return: &meta.Type{Kind: meta.TypeF64}},
		},
	})
	require.NoError(t, err)
	return ci
}

func TestParseTargetLanguage(t *testing.T) {
	require := require.New(t)

	for in, want := range map[string]TargetLanguage{
		"kotlin": Kotlin,
		"kt":     Kotlin,
		"Swift":  Swift,
		"python": Python,
		"py":     Python,
	} {
		got, err := ParseTargetLanguage(in)
		require.NoError(err, in)
		require.Equal(want, got, in)
	}

	_, err := ParseTargetLanguage("cobol")
	require.Error(err)
}

func TestCheckLibraryPath(t *testing.T) {
	require := require.New(t)

	g := &Default{Languages: AllLanguages()}
	require.NoError(g.CheckLibraryPath("/path/to/libgeometry.so", "geometry"))

	err := g.CheckLibraryPath("/path/to/geometry.a", "")
	var unsupported *UnsupportedLibraryError
	require.ErrorAs(err, &unsupported)
}

func TestWriteBindings(t *testing.T) {
	require := require.New(t)

	ci := testCI(t)
	cfg := &config.CrateConfig{}
	cfg.UpdateFromCdylibName("geometry")
	cfg.UpdateFromCI(ci)

	outDir := t.TempDir()
	g := &Default{Languages: AllLanguages()}
	require.NoError(g.WriteBindings(ci, cfg, outDir))

	kt, err := os.ReadFile(filepath.Join(outDir, "Geometry.kt"))
	require.NoError(err)
	require.Contains(string(kt), "package ffikit.geometry")
	require.Contains(string(kt), "data class Point(")
	require.Contains(string(kt), "sealed class GeomError")
	require.Contains(string(kt), "class Canvas internal constructor")
	require.Contains(string(kt), "fun distance(")
	require.Contains(string(kt), `CDYLIB_NAME = "geometry"`)

	swift, err := os.ReadFile(filepath.Join(outDir, "Geometry.swift"))
	require.NoError(err)
	require.Contains(string(swift), "public struct Point")
	require.Contains(string(swift), "public enum GeomError: Error")
	require.Contains(string(swift), "throws -> Void")

	py, err := os.ReadFile(filepath.Join(outDir, "geometry.py"))
	require.NoError(err)
	require.Contains(string(py), "class Point:")
	require.Contains(string(py), "class GeomError(Exception):")
	require.Contains(string(py), "def distance(")
}

func TestWriteBindingsDeterministic(t *testing.T) {
	require := require.New(t)

	ci := testCI(t)
	cfg := &config.CrateConfig{}
	cfg.UpdateFromCdylibName("geometry")
	cfg.UpdateFromCI(ci)

	g := &Default{Languages: AllLanguages()}
	dirA, dirB := t.TempDir(), t.TempDir()
	require.NoError(g.WriteBindings(ci, cfg, dirA))
	require.NoError(g.WriteBindings(ci, cfg, dirB))

	for _, name := range []string{"Geometry.kt", "Geometry.swift", "geometry.py"} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(err)
		require.Equal(a, b, name)
	}
}

func TestWriteBindingsUnwritableDir(t *testing.T) {
	require := require.New(t)

	ci := testCI(t)
	cfg := &config.CrateConfig{}
	cfg.UpdateFromCI(ci)

	g := &Default{Languages: []TargetLanguage{Python}}
	err := g.WriteBindings(ci, cfg, filepath.Join(t.TempDir(), "missing", "nested"))
	require.Error(err)
}
