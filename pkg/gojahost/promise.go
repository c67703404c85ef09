package gojahost

import (
	"github.com/dop251/goja"
)

// pending is a script promise seen as a mermaidinit.Pending.
type pending struct {
	h   *Host
	obj *goja.Object
}

// Then runs the matching callback right away when the promise has settled,
// otherwise when the runtime settles it. Callbacks never run with the host
// lock held by Then itself.
func (p *pending) Then(onSuccess func(), onFailure func(error)) {
	if onSuccess == nil {
		onSuccess = func() {}
	}
	if onFailure == nil {
		onFailure = func(error) {}
	}

	p.h.lock.Lock()
	promise := p.obj.Export().(*goja.Promise)
	switch promise.State() {
	case goja.PromiseStateFulfilled:
		p.h.lock.Unlock()
		onSuccess()
		return
	case goja.PromiseStateRejected:
		err := valueError(promise.Result())
		p.h.lock.Unlock()
		onFailure(err)
		return
	}
	then, ok := goja.AssertFunction(p.obj.Get("then"))
	if !ok {
		p.h.lock.Unlock()
		return
	}
	vm := p.h.vm
	_, err := then(p.obj,
		vm.ToValue(func(goja.FunctionCall) goja.Value {
			onSuccess()
			return goja.Undefined()
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			onFailure(valueError(call.Argument(0)))
			return goja.Undefined()
		}),
	)
	p.h.lock.Unlock()
	if err != nil {
		onFailure(PrettifyException(err))
	}
}
