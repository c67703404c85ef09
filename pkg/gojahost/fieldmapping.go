package gojahost

import (
	"reflect"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"
	"github.com/stoewer/go-strcase"
)

// tagFieldNameMapper exposes Go struct fields to scripts under their json tag,
// falling back to lowerCamelCase so RendererConfig reads the way the renderer
// expects its options (startOnLoad, securityLevel, ...).
type tagFieldNameMapper struct {
	tagName      string
	uncapMethods bool
}

func (tfm tagFieldNameMapper) FieldName(_ reflect.Type, f reflect.StructField) string {
	tag := f.Tag.Get(tfm.tagName)
	if idx := strings.IndexByte(tag, ','); idx != -1 {
		tag = tag[:idx]
	}
	if tag == "-" {
		return ""
	}
	if parser.IsIdentifier(tag) {
		return tag
	}
	return strcase.LowerCamelCase(f.Name)
}

func (tfm tagFieldNameMapper) MethodName(_ reflect.Type, m reflect.Method) string {
	if tfm.uncapMethods {
		return strcase.LowerCamelCase(m.Name)
	}
	return m.Name
}

func TagFieldNameMapper(tagName string, uncapMethods bool) goja.FieldNameMapper {
	return tagFieldNameMapper{tagName, uncapMethods}
}
