package gojahost

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"

	"github.com/zbysir/mermaidinit"
)

// renderer adapts a script global with initialize/run methods.
type renderer struct {
	h          *Host
	obj        *goja.Object
	initialize goja.Callable
	run        goja.Callable
}

func (r *renderer) Version() string {
	r.h.lock.Lock()
	defer r.h.lock.Unlock()
	v := r.obj.Get("version")
	if !defined(v) {
		return ""
	}
	return v.String()
}

func (r *renderer) Initialize(cfg mermaidinit.RendererConfig) error {
	r.h.lock.Lock()
	defer r.h.lock.Unlock()
	_, err := r.initialize(r.obj, r.h.vm.ToValue(cfg))
	return PrettifyException(err)
}

// Run calls run({nodes: [...]}) with the selection bridged into the runtime.
// A synchronous throw becomes a rejection; a non-promise result counts as
// success.
func (r *renderer) Run(nodes *goquery.Selection) mermaidinit.Pending {
	r.h.lock.Lock()
	defer r.h.lock.Unlock()

	vm := r.h.vm
	elements := make([]interface{}, 0, nodes.Length())
	nodes.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, r.h.newElement(s))
	})
	arg := vm.NewObject()
	if err := arg.Set("nodes", vm.NewArray(elements...)); err != nil {
		return mermaidinit.Rejected{Err: err}
	}

	v, err := r.run(r.obj, arg)
	if err != nil {
		return mermaidinit.Rejected{Err: PrettifyException(err)}
	}
	if !defined(v) {
		return mermaidinit.Resolved{}
	}
	if _, ok := v.Export().(*goja.Promise); !ok {
		return mermaidinit.Resolved{}
	}
	return &pending{h: r.h, obj: v.ToObject(vm)}
}
