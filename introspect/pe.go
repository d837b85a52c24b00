package introspect

import (
	"debug/pe"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ffikit/ffikit/meta"
)

func extractPE(path string, r io.ReaderAt) ([]meta.Item, error) {
	f, err := pe.NewFile(r)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}

	// COFF symbol values are offsets within their section, so the stable
	// artifact order is (section, offset).
	var syms []*pe.Symbol
	seen := map[string]struct{}{}
	for _, sym := range f.Symbols {
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

	sort.Slice(syms, func(i, j int) bool {
		if syms[i].SectionNumber != syms[j].SectionNumber {
			return syms[i].SectionNumber < syms[j].SectionNumber
		}
		return syms[i].Value < syms[j].Value
	})

	items := make([]meta.Item, 0, len(syms))
	for _, sym := range syms {
		if sym.SectionNumber <= 0 || int(sym.SectionNumber) > len(f.Sections) {
			return nil, &FormatError{Path: path, Symbol: sym.Name, Err: fmt.Errorf("symbol has no section (section number %v)", sym.SectionNumber)}
		}
		sect := f.Sections[sym.SectionNumber-1]
		data, err := sect.Data()
		if err != nil {
			return nil, &FormatError{Path: path, Symbol: sym.Name, Err: err}
		}
		if uint64(sym.Value) >= uint64(len(data)) {
			return nil, &FormatError{Path: path, Symbol: sym.Name, Err: fmt.Errorf("symbol offset %#x outside section %v", sym.Value, sect.Name)}
		}
		item, err := decodeItem(path, sym.Name, data[sym.Value:])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
