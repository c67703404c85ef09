package timetrack

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"cdr.dev/slog"

	"github.com/zbysir/mermaidinit/internal/log"
)

// TimeTracker logs nested spans at debug level. A nil tracker is a no-op.
type TimeTracker struct {
	timerDeep int32
}

func (b *TimeTracker) Start(ctx context.Context, span string) func() {
	if b == nil {
		return func() {}
	}
	deep := atomic.AddInt32(&b.timerDeep, 1)
	n := time.Now()
	indent := strings.Repeat(" ", int((deep-1)*2))
	log.Debug(ctx, "[timer]"+indent+" "+span+" start")
	return func() {
		log.Debug(ctx, "[timer]"+indent+" "+span+" end", slog.F("took", time.Since(n)))
		atomic.AddInt32(&b.timerDeep, -1)
	}
}

// Depth reports how many spans are open.
func (b *TimeTracker) Depth() int {
	if b == nil {
		return 0
	}
	return int(atomic.LoadInt32(&b.timerDeep))
}
