package gojahost

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
)

// newElement exposes a document node to the renderer with the small part of
// the DOM Element interface diagram libraries touch. Writes go straight to
// the underlying document.
func (h *Host) newElement(s *goquery.Selection) *goja.Object {
	vm := h.vm
	o := vm.NewObject()

	property := func(name string, get func() interface{}, set func(string)) {
		getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(get())
		})
		var setter goja.Value
		if set != nil {
			setter = vm.ToValue(func(call goja.FunctionCall) goja.Value {
				set(call.Argument(0).String())
				return goja.Undefined()
			})
		}
		_ = o.DefineAccessorProperty(name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	attr := func(name string) func() interface{} {
		return func() interface{} {
			v, _ := s.Attr(name)
			return v
		}
	}
	setAttr := func(name string) func(string) {
		return func(v string) { s.SetAttr(name, v) }
	}

	property("id", attr("id"), setAttr("id"))
	property("className", attr("class"), setAttr("class"))
	property("tagName", func() interface{} {
		return strings.ToUpper(goquery.NodeName(s))
	}, nil)
	property("textContent", func() interface{} {
		return s.Text()
	}, func(v string) {
		s.SetText(v)
	})
	property("innerHTML", func() interface{} {
		v, _ := s.Html()
		return v
	}, func(v string) {
		s.SetHtml(v)
	})

	_ = o.Set("getAttribute", func(name string) goja.Value {
		v, ok := s.Attr(name)
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	_ = o.Set("setAttribute", func(name, v string) {
		s.SetAttr(name, v)
	})
	_ = o.Set("hasAttribute", func(name string) bool {
		_, ok := s.Attr(name)
		return ok
	})
	_ = o.Set("removeAttribute", func(name string) {
		s.RemoveAttr(name)
	})
	return o
}
