package introspect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ffikit/ffikit/introspect"
	"github.com/ffikit/ffikit/introspect/introspecttest"
	"github.com/ffikit/ffikit/meta"
)

func TestExtractFromELF(t *testing.T) {
	require := require.New(t)

	items := []meta.Item{
		meta.Namespace{CrateName: "core", Name: "core"},
		meta.Func{ModulePath: "core", Name: "ping"},
		meta.Namespace{CrateName: "net", Name: "net"},
		meta.Record{ModulePath: "net", Name: "Addr", Fields: []meta.Field{
			{Name: "host", Type: meta.Type{Kind: meta.TypeString}},
			{Name: "port", Type: meta.Type{Kind: meta.TypeU16}},
		}},
	}
	path := introspecttest.WriteLibrary(t, t.TempDir(), "libcore.so", items)

	got, err := introspect.ExtractFromLibrary(path)
	require.NoError(err)
	require.Equal(items, got)
}

func TestExtractEmptyLibrary(t *testing.T) {
	require := require.New(t)

	path := introspecttest.WriteLibrary(t, t.TempDir(), "libempty.so", nil)

	got, err := introspect.ExtractFromLibrary(path)
	require.NoError(err)
	require.Empty(got)
}

func TestExtractMissingFile(t *testing.T) {
	require := require.New(t)

	_, err := introspect.ExtractFromLibrary(filepath.Join(t.TempDir(), "libnope.so"))
	require.ErrorIs(err, os.ErrNotExist)
}

func TestExtractUnrecognizedFormat(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "libjunk.so")
	require.NoError(os.WriteFile(path, []byte("definitely not a shared library"), 0666))

	_, err := introspect.ExtractFromLibrary(path)
	var fmtErr *introspect.FormatError
	require.ErrorAs(err, &fmtErr)
	require.Contains(err.Error(), "unrecognized library format")
}

func TestExtractCorruptedRecord(t *testing.T) {
	require := require.New(t)

	good, err := introspect.EncodeItem(meta.Namespace{CrateName: "core", Name: "core"})
	require.NoError(err)
	bad := append([]byte{}, good...)
	bad[0] = 'X'

	data := introspecttest.BuildELF(t, [][]byte{good, bad})
	path := filepath.Join(t.TempDir(), "libcorrupt.so")
	require.NoError(os.WriteFile(path, data, 0666))

	_, err = introspect.ExtractFromLibrary(path)
	var fmtErr *introspect.FormatError
	require.ErrorAs(err, &fmtErr)
}
