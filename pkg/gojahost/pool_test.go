package gojahost

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbysir/mermaidinit"
)

func TestPool(t *testing.T) {
	ctx, _ := recordCtx()
	cache := NewProgramCache(4)
	var created int32
	p := NewPool(ctx, 2, func(ctx context.Context) (*Host, error) {
		atomic.AddInt32(&created, 1)
		h, err := NewHost(ctx, WithProgramCache(cache))
		if err != nil {
			return nil, err
		}
		return h, h.Load("mermaid.fake.js", fakeMermaid)
	})
	defer p.Close(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			h, err := p.Get(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer p.Put(ctx, h)

			a, err := mermaidinit.New(h)
			if !assert.NoError(t, err) {
				return
			}
			doc := newDoc(t, blocks)
			res := a.Initialize(ctx, doc)
			assert.Equal(t, 2, res.Converted)
			assert.Equal(t, 2, doc.Find(".mermaid svg").Length())
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&created), int32(2))
	require.Equal(t, 1, cache.Len())
}
