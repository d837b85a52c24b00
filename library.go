package ffikit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ffikit/ffikit/config"
	"github.com/ffikit/ffikit/gen"
	"github.com/ffikit/ffikit/introspect"
	"github.com/ffikit/ffikit/ir"
	"github.com/ffikit/ffikit/meta"
)

// Source is one crate ready for generation: its name, validated interface
// and resolved configuration. Sources own their interface and configuration
// outright; nothing is shared between two Sources.
type Source struct {
	CrateName string
	CI        *ir.ComponentInterface
	Config    *config.CrateConfig
}

// BindingGenerator is the capability the pipeline drives per crate. The
// orchestrator never inspects the concrete type behind it.
type BindingGenerator interface {
	// CheckLibraryPath decides up front whether the library is usable
	// with this generator. cdylibName is "" when no naming convention
	// matched the path. Called before any scanning happens.
	CheckLibraryPath(libraryPath, cdylibName string) error

	// WriteBindings emits all files for one crate into outDir.
	WriteBindings(ci *ir.ComponentInterface, cfg *config.CrateConfig, outDir string) error
}

// cdylibExtensions are the recognized native-library suffixes.
var cdylibExtensions = []string{".so", ".dll", ".dylib"}

// CalcCdylibName returns the probable library name for a path following a
// native-library naming convention, or "" if no convention matches.
//
// The "lib" prefix is always stripped. Windows DLLs do not carry that
// prefix, so a Windows library legitimately named "libuniffi.dll" comes
// back as "uniffi"; on Linux/macOS the same crate would have produced
// "liblibuniffi.so". Known limitation.
func CalcCdylibName(libraryPath string) string {
	filename := filepath.Base(libraryPath)
	filename = strings.TrimPrefix(filename, "lib")
	for _, ext := range cdylibExtensions {
		if name, ok := strings.CutSuffix(filename, ext); ok {
			return name
		}
	}
	return ""
}

// GenerateBindings generates bindings with the built-in generator for the
// given target languages. It returns the Sources used, in the order their
// namespaces were discovered in the library.
//
// configPath overrides the configuration file location; "" means the
// default file name under crateRoot.
func GenerateBindings(libraryPath, crateRoot, configPath string, languages []gen.TargetLanguage, outDir string, tryFormatCode bool) ([]Source, error) {
	return GenerateExternalBindings(&gen.Default{
		Languages:     languages,
		TryFormatCode: tryFormatCode,
	}, libraryPath, crateRoot, configPath, outDir)
}

// GenerateExternalBindings generates bindings with any generator satisfying
// [BindingGenerator]. It returns the Sources used, in the order their
// namespaces were discovered in the library.
//
// The run is all or nothing: the first failure aborts the batch and no
// partial result set is returned.
func GenerateExternalBindings(g BindingGenerator, libraryPath, crateRoot, configPath, outDir string) ([]Source, error) {
	cdylibName := CalcCdylibName(libraryPath)
	if err := g.CheckLibraryPath(libraryPath, cdylibName); err != nil {
		return nil, err
	}

	sources, err := findSources(libraryPath, crateRoot, configPath, cdylibName)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	for _, source := range sources {
		if err := g.WriteBindings(source.CI, source.Config, outDir); err != nil {
			return nil, fmt.Errorf("write bindings for crate %v: %w", source.CrateName, err)
		}
	}
	return sources, nil
}

// findSources turns the library's embedded metadata into one Source per
// discovered crate, in discovery order.
func findSources(libraryPath, crateRoot, configPath, cdylibName string) ([]Source, error) {
	items, err := introspect.ExtractFromLibrary(libraryPath)
	if err != nil {
		return nil, err
	}

	groups := meta.NewGroupSet(items)
	if err := groups.Assign(items); err != nil {
		return nil, err
	}

	cfgFile, err := config.LoadInitial(crateRoot, configPath)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, groups.Len())
	for _, group := range groups.Groups() {
		crateName := group.Namespace.CrateName

		ci := ir.New(crateName)
		if err := ci.AddMetadata(group); err != nil {
			return nil, err
		}

		cfg, err := cfgFile.Resolve(crateName)
		if err != nil {
			return nil, err
		}
		if cdylibName != "" {
			cfg.UpdateFromCdylibName(cdylibName)
		}
		cfg.UpdateFromCI(ci)

		sources = append(sources, Source{
			CrateName: crateName,
			CI:        ci,
			Config:    cfg,
		})
	}
	return sources, nil
}
