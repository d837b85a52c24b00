// Package introspecttest builds tiny synthetic shared libraries for tests.
package introspecttest

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ffikit/ffikit/introspect"
	"github.com/ffikit/ffikit/meta"
)

// BuildLibrary encodes the given items and embeds them in a minimal ELF
// shared object, one FFIKIT_META_* symbol per item, in input order.
func BuildLibrary(t *testing.T, items []meta.Item) []byte {
	t.Helper()

	payloads := make([][]byte, 0, len(items))
	for _, item := range items {
		p, err := introspect.EncodeItem(item)
		if err != nil {
			t.Fatalf("encode %T: %v", item, err)
		}
		payloads = append(payloads, p)
	}
	return BuildELF(t, payloads)
}

// WriteLibrary builds the library and writes it under dir with a
// conventional shared-object name.
func WriteLibrary(t *testing.T, dir, name string, items []meta.Item) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildLibrary(t, items), 0666); err != nil {
		t.Fatalf("write library: %v", err)
	}
	return path
}

// BuildELF assembles a minimal ELF64 shared object whose .rodata holds the
// given raw payloads back to back, each addressed by one exported
// FFIKIT_META_T<n> symbol. Just enough structure for debug/elf to parse.
func BuildELF(t *testing.T, payloads [][]byte) []byte {
	t.Helper()

	const (
		ehSize     = 64
		shEntSize  = 64
		symEntSize = 24
		rodataAddr = 0x1000
	)

	type symbol struct {
		name  string
		value uint64
		size  uint64
	}

	var rodata []byte
	symbols := make([]symbol, 0, len(payloads))
	for i, p := range payloads {
		symbols = append(symbols, symbol{
			name:  fmt.Sprintf("%vT%03d", introspect.SymbolPrefix, i),
			value: rodataAddr + uint64(len(rodata)),
			size:  uint64(len(p)),
		})
		rodata = append(rodata, p...)
	}

	// String tables. Index 0 is the empty name.
	strtab := []byte{0}
	symNameOff := make([]uint32, len(symbols))
	for i, sym := range symbols {
		symNameOff[i] = uint32(len(strtab))
		strtab = append(strtab, sym.name...)
		strtab = append(strtab, 0)
	}
	shstrtab := []byte{0}
	sectNameOff := make(map[string]uint32)
	for _, name := range []string{".rodata", ".symtab", ".strtab", ".shstrtab"} {
		sectNameOff[name] = uint32(len(shstrtab))
		shstrtab = append(shstrtab, name...)
		shstrtab = append(shstrtab, 0)
	}

	align8 := func(off int) int { return (off + 7) &^ 7 }

	rodataOff := ehSize
	symtabOff := align8(rodataOff + len(rodata))
	symtabSize := symEntSize * (1 + len(symbols))
	strtabOff := symtabOff + symtabSize
	shstrtabOff := strtabOff + len(strtab)
	shOff := align8(shstrtabOff + len(shstrtab))
	total := shOff + 5*shEntSize

	out := make([]byte, total)
	le := binary.LittleEndian

	// ELF header
	copy(out, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}) // 64-bit, little-endian, version 1
	le.PutUint16(out[16:], 3)                          // e_type: ET_DYN
	le.PutUint16(out[18:], 62)                         // e_machine: EM_X86_64
	le.PutUint32(out[20:], 1)                          // e_version
	le.PutUint64(out[40:], uint64(shOff))              // e_shoff
	le.PutUint16(out[52:], ehSize)                     // e_ehsize
	le.PutUint16(out[58:], shEntSize)                  // e_shentsize
	le.PutUint16(out[60:], 5)                          // e_shnum
	le.PutUint16(out[62:], 4)                          // e_shstrndx

	copy(out[rodataOff:], rodata)
	copy(out[strtabOff:], strtab)
	copy(out[shstrtabOff:], shstrtab)

	// Symbol table: null entry, then one STB_GLOBAL/STT_OBJECT per payload.
	for i, sym := range symbols {
		entry := out[symtabOff+(1+i)*symEntSize:]
		le.PutUint32(entry[0:], symNameOff[i])
		entry[4] = 0x11 // STB_GLOBAL<<4 | STT_OBJECT
		le.PutUint16(entry[6:], 1)
		le.PutUint64(entry[8:], sym.value)
		le.PutUint64(entry[16:], sym.size)
	}

	writeSection := func(idx int, name string, typ, flags uint32, addr uint64, off, size, link, info, entsize int) {
		sh := out[shOff+idx*shEntSize:]
		le.PutUint32(sh[0:], sectNameOff[name])
		le.PutUint32(sh[4:], typ)
		le.PutUint64(sh[8:], uint64(flags))
		le.PutUint64(sh[16:], addr)
		le.PutUint64(sh[24:], uint64(off))
		le.PutUint64(sh[32:], uint64(size))
		le.PutUint32(sh[40:], uint32(link))
		le.PutUint32(sh[44:], uint32(info))
		le.PutUint64(sh[48:], 8) // sh_addralign
		le.PutUint64(sh[56:], uint64(entsize))
	}
	// Index 0 stays the all-zero null section.
	writeSection(1, ".rodata", 1 /* SHT_PROGBITS */, 2 /* SHF_ALLOC */, rodataAddr, rodataOff, len(rodata), 0, 0, 0)
	writeSection(2, ".symtab", 2 /* SHT_SYMTAB */, 0, 0, symtabOff, symtabSize, 3, 1, symEntSize)
	writeSection(3, ".strtab", 3 /* SHT_STRTAB */, 0, 0, strtabOff, len(strtab), 0, 0, 0)
	writeSection(4, ".shstrtab", 3 /* SHT_STRTAB */, 0, 0, shstrtabOff, len(shstrtab), 0, 0, 0)

	return out
}
