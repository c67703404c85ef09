package gojahost

import (
	"context"

	pool "github.com/jolestar/go-commons-pool/v2"
)

type tPool[T any] struct {
	op *pool.ObjectPool
}

func newTPool[T any](ctx context.Context, maxTotal int, fun func(ctx context.Context) (T, error)) *tPool[T] {
	factory := pool.NewPooledObjectFactorySimple(
		func(ctx context.Context) (interface{}, error) {
			return fun(ctx)
		})
	config := pool.NewDefaultPoolConfig()
	config.MaxIdle = -1
	config.MaxTotal = maxTotal
	config.BlockWhenExhausted = true

	return &tPool[T]{
		op: pool.NewObjectPool(ctx, factory, config),
	}
}

func (p *tPool[T]) Get(ctx context.Context) (t T, err error) {
	o, err := p.op.BorrowObject(ctx)
	if err != nil {
		return
	}
	return o.(T), nil
}

func (p *tPool[T]) Put(ctx context.Context, t T) error {
	return p.op.ReturnObject(ctx, t)
}

// Pool hands out hosts that already have the renderer loaded. Hosts are
// expensive to build, so batch runs borrow them instead.
type Pool struct {
	p *tPool[*Host]
}

// NewPool creates at most size hosts, each prepared by setup.
func NewPool(ctx context.Context, size int, setup func(ctx context.Context) (*Host, error)) *Pool {
	return &Pool{p: newTPool(ctx, size, setup)}
}

func (p *Pool) Get(ctx context.Context) (*Host, error) {
	return p.p.Get(ctx)
}

func (p *Pool) Put(ctx context.Context, h *Host) error {
	return p.p.Put(ctx, h)
}

func (p *Pool) Close(ctx context.Context) {
	p.p.op.Close(ctx)
}
