package introspect

import (
	"debug/macho"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ffikit/ffikit/meta"
)

func extractMachO(path string, r io.ReaderAt) ([]meta.Item, error) {
	f, err := macho.NewFile(r)
	if err != nil {
		// Fat binaries hold one image per architecture; the metadata is
		// identical in each, so the first one wins.
		fat, fatErr := macho.NewFatFile(r)
		if fatErr != nil {
			return nil, &FormatError{Path: path, Err: err}
		}
		if len(fat.Arches) == 0 {
			return nil, &FormatError{Path: path, Err: fmt.Errorf("fat binary with no architectures")}
		}
		f = fat.Arches[0].File
	}

	if f.Symtab == nil {
		return nil, nil
	}

	var syms []macho.Symbol
	seen := map[string]struct{}{}
	for _, sym := range f.Symtab.Syms {
		// Mach-O mangles C symbols with a leading underscore.
		name := strings.TrimPrefix(sym.Name, "_")
		if !strings.HasPrefix(name, SymbolPrefix) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		syms = append(syms, sym)
	}

	sort.Slice(syms, func(i, j int) bool { return syms[i].Value < syms[j].Value })

	items := make([]meta.Item, 0, len(syms))
	for _, sym := range syms {
		sect := machoSectionAt(f, sym.Value)
		if sect == nil {
			return nil, &FormatError{Path: path, Symbol: sym.Name, Err: fmt.Errorf("no section contains address %#x", sym.Value)}
		}
		data, err := sect.Data()
		if err != nil {
			return nil, &FormatError{Path: path, Symbol: sym.Name, Err: err}
		}
		item, err := decodeItem(path, sym.Name, data[sym.Value-sect.Addr:])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func machoSectionAt(f *macho.File, addr uint64) *macho.Section {
	for _, sect := range f.Sections {
		if sect.Size == 0 {
			continue
		}
		if sect.Addr <= addr && addr < sect.Addr+sect.Size {
			return sect
		}
	}
	return nil
}
