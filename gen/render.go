package gen

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"

	"github.com/ffikit/ffikit/config"
	"github.com/ffikit/ffikit/ir"
	"github.com/ffikit/ffikit/meta"
)

//go:embed templates/kotlin.kt.tmpl
var templateSrcKotlin string

//go:embed templates/swift.swift.tmpl
var templateSrcSwift string

//go:embed templates/python.py.tmpl
var templateSrcPython string

var templateFuncMap = template.FuncMap{
	"camel":       strcase.ToCamel,
	"lowerCamel":  strcase.ToLowerCamel,
	"snake":       strcase.ToSnake,
	"upper":       strings.ToUpper,
	"ktType":      func(t meta.Type) string { return ktType(&t) },
	"ktReturn":    ktType,
	"swiftType":   func(t meta.Type) string { return swiftType(&t) },
	"swiftReturn": swiftType,
	"pyType":      func(t meta.Type) string { return pyType(&t) },
	"pyReturn":    pyType,
}

var (
	templateKotlin = template.Must(template.New("kotlin.kt.tmpl").Funcs(templateFuncMap).Parse(templateSrcKotlin))
	templateSwift  = template.Must(template.New("swift.swift.tmpl").Funcs(templateFuncMap).Parse(templateSrcSwift))
	templatePython = template.Must(template.New("python.py.tmpl").Funcs(templateFuncMap).Parse(templateSrcPython))
)

// renderData is the root template context for every language.
type renderData struct {
	CI          *ir.ComponentInterface
	PackageName string // Kotlin
	ModuleName  string // Swift, Python
	CdylibName  string
}

func render(lang TargetLanguage, ci *ir.ComponentInterface, cfg *config.CrateConfig) (filename, code string, err error) {
	ns := ci.Namespace()
	data := renderData{
		CI:          ci,
		PackageName: orElse(cfg.Kotlin.PackageName, "ffikit."+strcase.ToSnake(ns)),
		CdylibName:  "ffikit_" + strcase.ToSnake(ns),
	}

	var tmpl *template.Template
	switch lang {
	case Kotlin:
		tmpl = templateKotlin
		data.CdylibName = orElse(cfg.Kotlin.CdylibName, data.CdylibName)
	case Swift:
		tmpl = templateSwift
		data.ModuleName = orElse(cfg.Swift.ModuleName, strcase.ToCamel(ns))
		data.CdylibName = orElse(cfg.Swift.CdylibName, data.CdylibName)
	case Python:
		tmpl = templatePython
		data.ModuleName = orElse(cfg.Python.ModuleName, strcase.ToSnake(ns))
		data.CdylibName = orElse(cfg.Python.CdylibName, data.CdylibName)
	default:
		return "", "", fmt.Errorf("invalid target language: %v", lang)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", "", err
	}
	return outputName(lang, ci, cfg), b.String(), nil
}

func ktType(t *meta.Type) string {
	if t == nil {
		return "Unit"
	}
	switch t.Kind {
	case meta.TypeU8:
		return "UByte"
	case meta.TypeU16:
		return "UShort"
	case meta.TypeU32:
		return "UInt"
	case meta.TypeU64:
		return "ULong"
	case meta.TypeI8:
		return "Byte"
	case meta.TypeI16:
		return "Short"
	case meta.TypeI32:
		return "Int"
	case meta.TypeI64:
		return "Long"
	case meta.TypeF32:
		return "Float"
	case meta.TypeF64:
		return "Double"
	case meta.TypeBool:
		return "Boolean"
	case meta.TypeString:
		return "String"
	case meta.TypeBytes:
		return "ByteArray"
	case meta.TypeDuration:
		return "java.time.Duration"
	case meta.TypeTimestamp:
		return "java.time.Instant"
	case meta.TypeOptional:
		return ktType(t.Elem) + "?"
	case meta.TypeSequence:
		return "List<" + ktType(t.Elem) + ">"
	case meta.TypeMap:
		return "Map<" + ktType(t.Key) + ", " + ktType(t.Elem) + ">"
	case meta.TypeRecord, meta.TypeEnum, meta.TypeObject:
		return strcase.ToCamel(t.Name)
	default:
		panic(fmt.Sprintf("invalid type kind: %v", t.Kind))
	}
}

func swiftType(t *meta.Type) string {
	if t == nil {
		return "Void"
	}
	switch t.Kind {
	case meta.TypeU8:
		return "UInt8"
	case meta.TypeU16:
		return "UInt16"
	case meta.TypeU32:
		return "UInt32"
	case meta.TypeU64:
		return "UInt64"
	case meta.TypeI8:
		return "Int8"
	case meta.TypeI16:
		return "Int16"
	case meta.TypeI32:
		return "Int32"
	case meta.TypeI64:
		return "Int64"
	case meta.TypeF32:
		return "Float"
	case meta.TypeF64:
		return "Double"
	case meta.TypeBool:
		return "Bool"
	case meta.TypeString:
		return "String"
	case meta.TypeBytes:
		return "Data"
	case meta.TypeDuration:
		return "TimeInterval"
	case meta.TypeTimestamp:
		return "Date"
	case meta.TypeOptional:
		return swiftType(t.Elem) + "?"
	case meta.TypeSequence:
		return "[" + swiftType(t.Elem) + "]"
	case meta.TypeMap:
		return "[" + swiftType(t.Key) + ": " + swiftType(t.Elem) + "]"
	case meta.TypeRecord, meta.TypeEnum, meta.TypeObject:
		return strcase.ToCamel(t.Name)
	default:
		panic(fmt.Sprintf("invalid type kind: %v", t.Kind))
	}
}

func pyType(t *meta.Type) string {
	if t == nil {
		return "None"
	}
	switch t.Kind {
	case meta.TypeU8, meta.TypeU16, meta.TypeU32, meta.TypeU64,
		meta.TypeI8, meta.TypeI16, meta.TypeI32, meta.TypeI64:
		return "int"
	case meta.TypeF32, meta.TypeF64:
		return "float"
	case meta.TypeBool:
		return "bool"
	case meta.TypeString:
		return "str"
	case meta.TypeBytes:
		return "bytes"
	case meta.TypeDuration:
		return "datetime.timedelta"
	case meta.TypeTimestamp:
		return "datetime.datetime"
	case meta.TypeOptional:
		return "typing.Optional[" + pyType(t.Elem) + "]"
	case meta.TypeSequence:
		return "typing.List[" + pyType(t.Elem) + "]"
	case meta.TypeMap:
		return "typing.Dict[" + pyType(t.Key) + ", " + pyType(t.Elem) + "]"
	case meta.TypeRecord, meta.TypeEnum, meta.TypeObject:
		return strcase.ToCamel(t.Name)
	default:
		panic(fmt.Sprintf("invalid type kind: %v", t.Kind))
	}
}
