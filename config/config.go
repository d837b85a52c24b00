// Package config resolves per-crate bindings configuration.
//
// Configuration is layered from three sources, applied in a fixed order:
// the user's ffikit.toml, the cdylib name inferred from the library path,
// and facts derived from the built interface model. A value the user set
// explicitly in the file is never overwritten by a later layer; fields are
// pointers so that "never set" is distinguishable from any explicit value.
package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"dario.cat/mergo"
	"github.com/iancoleman/strcase"
	"github.com/pelletier/go-toml/v2"

	"github.com/ffikit/ffikit/ir"
)

// DefaultFileName is the configuration file looked up in the crate root.
const DefaultFileName = "ffikit.toml"

type KotlinConfig struct {
	PackageName *string `toml:"package-name"`
	CdylibName  *string `toml:"cdylib-name"`
}

type SwiftConfig struct {
	ModuleName *string `toml:"module-name"`
	CdylibName *string `toml:"cdylib-name"`
}

type PythonConfig struct {
	ModuleName *string `toml:"module-name"`
	CdylibName *string `toml:"cdylib-name"`
}

// CrateConfig is the resolved configuration for one crate.
type CrateConfig struct {
	Kotlin KotlinConfig `toml:"kotlin"`
	Swift  SwiftConfig  `toml:"swift"`
	Python PythonConfig `toml:"python"`
}

// File is the parsed configuration file: top-level defaults shared by all
// crates, plus per-crate overrides under [crate.<name>].
type File struct {
	CrateConfig
	Crates map[string]CrateConfig `toml:"crate"`
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	filePath string
	err      error  // short, single-line error
	str      string // full, multi-line error string, or err string, if none
}

// Error returns a short error message.
func (e *ParseError) Error() string {
	return e.filePath + ": " + e.err.Error()
}

// String returns the full multi-line error string.
func (e *ParseError) String() string {
	if e.str != "" {
		return "Error in file " + strconv.Quote(e.filePath) + ":\n" + e.str
	}
	return e.Error()
}

func (e *ParseError) Unwrap() error { return e.err }

// Load reads and strictly decodes one configuration file.
func Load(path string) (_ *File, err error) {
	defer func() {
		if err != nil {
			if tErr := (&toml.DecodeError{}); errors.As(err, &tErr) {
				err = &ParseError{filePath: path, err: err, str: tErr.String()}
			} else if tErr := (&toml.StrictMissingError{}); errors.As(err, &tErr) {
				err = &ParseError{filePath: path, err: err, str: tErr.String()}
			} else {
				err = &ParseError{filePath: path, err: err}
			}
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := &File{}
	err = toml.NewDecoder(bytes.NewReader(data)).
		DisallowUnknownFields().
		Decode(f)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// LoadInitial loads the configuration for a crate root. When explicitPath is
// "", the default file name under crateRoot is used. A missing file yields
// an empty configuration; a malformed one is an error.
func LoadInitial(crateRoot, explicitPath string) (*File, error) {
	path := explicitPath
	if path == "" {
		path = filepath.Join(crateRoot, DefaultFileName)
	}
	f, err := Load(path)
	if err != nil {
		if explicitPath == "" && errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, err
	}
	return f, nil
}

// Resolve produces the configuration for one crate: the crate's own section
// with unset fields filled from the top-level defaults.
func (f *File) Resolve(crateName string) (*CrateConfig, error) {
	cfg := f.Crates[crateName]
	if err := mergo.Merge(&cfg, f.CrateConfig); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func fill(dst **string, value string) {
	if *dst == nil {
		v := value
		*dst = &v
	}
}

// UpdateFromCdylibName lets the config adopt the inferred library name for
// every cdylib field still unset. Explicit values always win.
func (c *CrateConfig) UpdateFromCdylibName(name string) {
	fill(&c.Kotlin.CdylibName, name)
	fill(&c.Swift.CdylibName, name)
	fill(&c.Python.CdylibName, name)
}

// UpdateFromCI derives language-specific defaults from the built interface
// model for every field still unset. Explicit values always win.
func (c *CrateConfig) UpdateFromCI(ci *ir.ComponentInterface) {
	ns := ci.Namespace()
	fill(&c.Kotlin.PackageName, "ffikit."+strcase.ToSnake(ns))
	fill(&c.Swift.ModuleName, strcase.ToCamel(ns))
	fill(&c.Python.ModuleName, strcase.ToSnake(ns))

	// Last-resort cdylib fallback when the library path gave no name.
	fallback := "ffikit_" + strcase.ToSnake(ns)
	fill(&c.Kotlin.CdylibName, fallback)
	fill(&c.Swift.CdylibName, fallback)
	fill(&c.Python.CdylibName, fallback)
}
