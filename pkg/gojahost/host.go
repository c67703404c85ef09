package gojahost

import (
	"context"
	"crypto/md5"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dop251/goja"
	lru "github.com/hashicorp/golang-lru/v2"
	"oss.terrastruct.com/xdefer"

	"github.com/zbysir/mermaidinit"
)

// ProgramCache holds compiled scripts keyed by the md5 of their source.
// It is safe to share between hosts.
type ProgramCache = lru.Cache[[16]byte, *goja.Program]

func NewProgramCache(size int) *ProgramCache {
	c, err := lru.New[[16]byte, *goja.Program](size)
	if err != nil {
		panic(err)
	}
	return c
}

// Host is a JavaScript runtime the renderer library is loaded into.
// It implements mermaidinit.Environment.
type Host struct {
	vm *goja.Runtime
	// goja is not goroutine-safe
	lock sync.Mutex

	globalName  string
	sourceFs    fs.FS
	transformer Transformer
	cache       *ProgramCache
	printer     Printer
	// ctx is read by script calls, which run with lock held
	ctx context.Context
}

var _ mermaidinit.Environment = (*Host)(nil)

type StdFileSystem struct {
}

func (f StdFileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

type Option interface {
	apply(h *Host)
}

type OptionFunc func(h *Host)

func (o OptionFunc) apply(h *Host) {
	o(h)
}

func WithFS(f fs.FS) Option {
	return OptionFunc(func(h *Host) {
		h.sourceFs = f
	})
}

func WithProgramCache(c *ProgramCache) Option {
	return OptionFunc(func(h *Host) {
		h.cache = c
	})
}

func WithTransformer(t Transformer) Option {
	return OptionFunc(func(h *Host) {
		h.transformer = t
	})
}

func WithPrinter(p Printer) Option {
	return OptionFunc(func(h *Host) {
		h.printer = p
	})
}

// WithGlobalName sets the global an ES module renderer is published under.
func WithGlobalName(name string) Option {
	return OptionFunc(func(h *Host) {
		h.globalName = name
	})
}

// NewHost creates a runtime whose console writes to the logger in ctx.
func NewHost(ctx context.Context, ops ...Option) (*Host, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(TagFieldNameMapper("json", true))

	h := &Host{
		vm:         vm,
		ctx:        ctx,
		globalName: mermaidinit.DefaultRendererName,
		sourceFs:   StdFileSystem{},
	}
	for _, o := range ops {
		o.apply(h)
	}
	if h.transformer == nil {
		h.transformer = NewEsBuildTransform(h.globalName, false)
	}
	if h.cache == nil {
		h.cache = NewProgramCache(16)
	}
	if h.printer == nil {
		h.printer = logPrinter{h: h}
	}
	if err := enableConsole(vm, h.printer); err != nil {
		return nil, err
	}
	return h, nil
}

// SetContext replaces the context console output is logged with. Pooled
// hosts are rebound to each borrower's context.
func (h *Host) SetContext(ctx context.Context) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.ctx = ctx
}

// Load runs a renderer script. Modules (.mjs, .ts, .tsx) are bundled first
// and their default export, if any, becomes the global.
func (h *Host) Load(name string, src []byte) (err error) {
	defer xdefer.Errorf(&err, "failed to load %s", name)

	h.lock.Lock()
	defer h.lock.Unlock()

	key := h.cacheKey(name, src)
	p, ok := h.cache.Get(key)
	if !ok {
		code, err := h.transformer.Transform(name, src)
		if err != nil {
			return err
		}
		p, err = goja.Compile(name, string(code), false)
		if err != nil {
			return PrettifyException(err)
		}
		h.cache.Add(key, p)
	}

	if _, err := h.vm.RunProgram(p); err != nil {
		return PrettifyException(err)
	}
	if NeedsTransform(name) {
		h.unwrapDefault()
	}
	return nil
}

// cacheKey covers everything the compiled program depends on: transformed
// output embeds the global name and differs between transformers.
func (h *Host) cacheKey(name string, src []byte) [16]byte {
	prefix := fmt.Sprintf("%s\x00%s\x00%#v\x00", filepath.Ext(name), h.globalName, h.transformer)
	return md5.Sum(append([]byte(prefix), src...))
}

// LoadFile reads path from the host's file system and loads it.
func (h *Host) LoadFile(path string) error {
	bs, err := fs.ReadFile(h.sourceFs, path)
	if err != nil {
		return err
	}
	return h.Load(path, bs)
}

func (h *Host) unwrapDefault() {
	v := h.vm.Get(h.globalName)
	if !defined(v) {
		return
	}
	obj := v.ToObject(h.vm)
	if defined(obj.Get("initialize")) {
		return
	}
	if d := obj.Get("default"); defined(d) {
		_ = h.vm.Set(h.globalName, d)
	}
}

// Eval runs code in the host's global scope.
func (h *Host) Eval(code string) (goja.Value, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	v, err := h.vm.RunString(code)
	if err != nil {
		return nil, PrettifyException(err)
	}
	return v, nil
}

// Lookup returns the global called name when it exposes initialize and run.
func (h *Host) Lookup(name string) (mermaidinit.Renderer, bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	v := h.vm.Get(name)
	if !defined(v) {
		return nil, false
	}
	obj := v.ToObject(h.vm)
	initialize, ok := goja.AssertFunction(obj.Get("initialize"))
	if !ok {
		return nil, false
	}
	run, ok := goja.AssertFunction(obj.Get("run"))
	if !ok {
		return nil, false
	}
	return &renderer{h: h, obj: obj, initialize: initialize, run: run}, true
}

// Globals lists the enumerable properties of the global object, sorted.
func (h *Host) Globals() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	keys := h.vm.GlobalObject().Keys()
	sort.Strings(keys)
	return keys
}

func defined(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}
