// Package introspect recovers interface metadata from a compiled shared
// library without loading it.
//
// Crates that expose an interface embed one metadata record per declared
// construct as an exported symbol named "FFIKIT_META_...". Each symbol's
// data is a small framed payload (see frame.go) living in the symbol's
// section. ExtractFromLibrary locates those symbols in ELF, Mach-O or PE
// containers and decodes them into [meta.Item] values.
package introspect

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ffikit/ffikit/meta"
)

// SymbolPrefix marks metadata-carrying exported symbols.
const SymbolPrefix = "FFIKIT_META_"

// FormatError reports a structurally invalid library or metadata record.
// I/O failures are not FormatErrors; they pass through unmodified.
type FormatError struct {
	Path   string
	Symbol string // empty when the container itself is at fault
	Err    error
}

func (e *FormatError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%v: symbol %v: %v", e.Path, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ExtractFromLibrary scans the shared library at path and returns every
// embedded metadata item, in a deterministic artifact order. A library that
// carries no metadata yields an empty slice, not an error.
func ExtractFromLibrary(path string) ([]meta.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, 4), magic[:]); err != nil {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("read magic: %w", err)}
	}

	switch {
	case magic == [4]byte{0x7f, 'E', 'L', 'F'}:
		return extractELF(path, f)
	case isMachOMagic(magic):
		return extractMachO(path, f)
	case magic[0] == 'M' && magic[1] == 'Z':
		return extractPE(path, f)
	default:
		return nil, &FormatError{Path: path, Err: fmt.Errorf("unrecognized library format (magic % x)", magic)}
	}
}

func isMachOMagic(magic [4]byte) bool {
	u := binary.BigEndian.Uint32(magic[:])
	switch u {
	case 0xfeedface, 0xfeedfacf, // 32/64-bit big-endian
		0xcefaedfe, 0xcffaedfe, // 32/64-bit little-endian
		0xcafebabe: // fat binary
		return true
	}
	return false
}
