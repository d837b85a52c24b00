package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ffikit/ffikit/ir"
	"github.com/ffikit/ffikit/meta"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return dir
}

func buildCI(t *testing.T, crate, namespace string) *ir.ComponentInterface {
	t.Helper()

	ci := ir.New(crate)
	require.NoError(t, ci.AddMetadata(&meta.Group{
		Namespace: meta.Namespace{CrateName: crate, Name: namespace},
	}))
	return ci
}

func TestLoadInitialMissingFile(t *testing.T) {
	require := require.New(t)

	f, err := LoadInitial(t.TempDir(), "")
	require.NoError(err)
	require.NotNil(f)
	require.Nil(f.Kotlin.PackageName)
}

func TestLoadInitialExplicitMissingFileFails(t *testing.T) {
	require := require.New(t)

	_, err := LoadInitial(t.TempDir(), filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(err)
}

func TestLoadMalformed(t *testing.T) {
	require := require.New(t)

	dir := writeConfig(t, "[kotlin]\npackage-name = [not a string]\n")
	_, err := LoadInitial(dir, "")
	var parseErr *ParseError
	require.ErrorAs(err, &parseErr)
	require.NotEmpty(parseErr.String())
}

func TestLoadUnknownFieldRejected(t *testing.T) {
	require := require.New(t)

	dir := writeConfig(t, "[kotlin]\npakage-name = \"com.example\"\n")
	_, err := LoadInitial(dir, "")
	var parseErr *ParseError
	require.ErrorAs(err, &parseErr)
}

func TestResolveOverlaysTopLevelDefaults(t *testing.T) {
	require := require.New(t)

	dir := writeConfig(t, `
[kotlin]
package-name = "com.example"

[crate.core.kotlin]
package-name = "com.example.core"

[crate.net.python]
module-name = "net_ffi"
`)
	f, err := LoadInitial(dir, "")
	require.NoError(err)

	core, err := f.Resolve("core")
	require.NoError(err)
	require.Equal("com.example.core", *core.Kotlin.PackageName)

	net, err := f.Resolve("net")
	require.NoError(err)
	require.Equal("com.example", *net.Kotlin.PackageName)
	require.Equal("net_ffi", *net.Python.ModuleName)

	other, err := f.Resolve("other")
	require.NoError(err)
	require.Equal("com.example", *other.Kotlin.PackageName)
}

func TestExplicitValuesSurviveInference(t *testing.T) {
	require := require.New(t)

	dir := writeConfig(t, `
[kotlin]
package-name = "com.example.geom"
cdylib-name = "geometry"
`)
	f, err := LoadInitial(dir, "")
	require.NoError(err)
	cfg, err := f.Resolve("core")
	require.NoError(err)

	cfg.UpdateFromCdylibName("scanned_name")
	cfg.UpdateFromCI(buildCI(t, "core", "core"))

	require.Equal("com.example.geom", *cfg.Kotlin.PackageName)
	require.Equal("geometry", *cfg.Kotlin.CdylibName)
	// Fields the file never set do adopt the inferred values.
	require.Equal("scanned_name", *cfg.Python.CdylibName)
	require.Equal("Core", *cfg.Swift.ModuleName)
}

func TestInferenceFillsUnsetFields(t *testing.T) {
	require := require.New(t)

	cfg := &CrateConfig{}
	cfg.UpdateFromCdylibName("mylib")
	cfg.UpdateFromCI(buildCI(t, "core", "image_tools"))

	require.Equal("mylib", *cfg.Kotlin.CdylibName)
	require.Equal("mylib", *cfg.Swift.CdylibName)
	require.Equal("mylib", *cfg.Python.CdylibName)
	require.Equal("ffikit.image_tools", *cfg.Kotlin.PackageName)
	require.Equal("ImageTools", *cfg.Swift.ModuleName)
	require.Equal("image_tools", *cfg.Python.ModuleName)
}

func TestCdylibFallbackWithoutLibraryName(t *testing.T) {
	require := require.New(t)

	cfg := &CrateConfig{}
	cfg.UpdateFromCI(buildCI(t, "core", "core"))

	require.Equal("ffikit_core", *cfg.Kotlin.CdylibName)
}
