// Package gen is the built-in binding generator. It emits Kotlin, Swift and
// Python source for a validated component interface.
package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/ffikit/ffikit/config"
	"github.com/ffikit/ffikit/ir"
)

// TargetLanguage selects one of the built-in emitters.
type TargetLanguage int

const (
	Kotlin TargetLanguage = iota
	Swift
	Python
)

// AllLanguages returns every built-in target language.
func AllLanguages() []TargetLanguage {
	return []TargetLanguage{Kotlin, Swift, Python}
}

func (l TargetLanguage) String() string {
	switch l {
	case Kotlin:
		return "kotlin"
	case Swift:
		return "swift"
	case Python:
		return "python"
	default:
		return "invalid"
	}
}

// ParseTargetLanguage accepts a language name or a common file extension.
func ParseTargetLanguage(s string) (TargetLanguage, error) {
	switch strings.ToLower(s) {
	case "kotlin", "kt", "kts":
		return Kotlin, nil
	case "swift":
		return Swift, nil
	case "python", "py":
		return Python, nil
	default:
		return 0, fmt.Errorf("unknown target language %q", s)
	}
}

// UnsupportedLibraryError reports that a library path cannot be used with
// the built-in generator.
type UnsupportedLibraryError struct {
	Path string
}

func (e *UnsupportedLibraryError) Error() string {
	return fmt.Sprintf("%v: not a supported shared library (expected [lib]<name>.{so,dylib,dll})", e.Path)
}

// Default is the built-in generator, one output file per crate per language.
type Default struct {
	Languages     []TargetLanguage
	TryFormatCode bool
}

// CheckLibraryPath rejects libraries whose name no naming convention could
// resolve. Called before any scanning happens.
func (g *Default) CheckLibraryPath(libraryPath, cdylibName string) error {
	if cdylibName == "" {
		return &UnsupportedLibraryError{Path: libraryPath}
	}
	return nil
}

// WriteBindings emits one source file per configured language into outDir.
func (g *Default) WriteBindings(ci *ir.ComponentInterface, cfg *config.CrateConfig, outDir string) error {
	for _, lang := range g.Languages {
		filename, code, err := render(lang, ci, cfg)
		if err != nil {
			return fmt.Errorf("render %v bindings for crate %v: %w", lang, ci.CrateName(), err)
		}
		path := filepath.Join(outDir, filename)
		if err := os.WriteFile(path, []byte(code), 0666); err != nil {
			return err
		}
		if g.TryFormatCode {
			// Best effort. A missing or failing formatter never fails
			// the run.
			formatFile(lang, path)
		}
	}
	return nil
}

func orElse(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

// outputName returns the emitted file name for a crate in one language.
func outputName(lang TargetLanguage, ci *ir.ComponentInterface, cfg *config.CrateConfig) string {
	switch lang {
	case Kotlin:
		return strcase.ToCamel(ci.Namespace()) + ".kt"
	case Swift:
		return orElse(cfg.Swift.ModuleName, strcase.ToCamel(ci.Namespace())) + ".swift"
	case Python:
		return orElse(cfg.Python.ModuleName, strcase.ToSnake(ci.Namespace())) + ".py"
	default:
		panic(fmt.Sprintf("invalid target language: %v", lang))
	}
}
