package introspect

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ffikit/ffikit/meta"
)

func extractELF(path string, r io.ReaderAt) ([]meta.Item, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}

	// Stripped libraries keep metadata in .dynsym; unstripped ones may
	// carry it in .symtab only. Collect both, deduplicated by name.
	var syms []elf.Symbol
	seen := map[string]struct{}{}
	for _, load := range []func() ([]elf.Symbol, error){f.DynamicSymbols, f.Symbols} {
		table, err := load()
		if err != nil {
			if errors.Is(err, elf.ErrNoSymbols) {
				continue
			}
			return nil, &FormatError{Path: path, Err: err}
		}
		for _, sym := range table {
			if !strings.HasPrefix(sym.Name, SymbolPrefix) {
				continue
			}
			if _, dup := seen[sym.Name]; dup {
				continue
			}
			seen[sym.Name] = struct{}{}
			syms = append(syms, sym)
		}
	}

	// Artifact order is address order.
	sort.Slice(syms, func(i, j int) bool { return syms[i].Value < syms[j].Value })

	items := make([]meta.Item, 0, len(syms))
	for _, sym := range syms {
		sect := elfSectionAt(f, sym.Value)
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

func elfSectionAt(f *elf.File, addr uint64) *elf.Section {
	for _, sect := range f.Sections {
		if sect.Type == elf.SHT_NOBITS || sect.Size == 0 {
			continue
		}
		if sect.Addr <= addr && addr < sect.Addr+sect.Size {
			return sect
		}
	}
	return nil
}
