package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/pkg/logger"
)

// Sink accepts click events on the redirect hot path. Implementations must
// not block the caller.
type Sink interface {
	Dispatch(evt ledger.ClickEvent)
	Close()
}

// Dispatcher is the in-process Sink. Events go through a buffered channel
// to a single worker that writes the click ledger, so a slow ledger never
// delays a redirect.
type Dispatcher struct {
	clicks    ledger.ClickLedger
	ch        chan ledger.ClickEvent
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher starts the worker goroutine. bufferSize bounds how many
// pending clicks survive a ledger stall before new ones are dropped.
func NewDispatcher(clicks ledger.ClickLedger, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	d := &Dispatcher{
		clicks: clicks,
		ch:     make(chan ledger.ClickEvent, bufferSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for evt := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.clicks.AppendClick(ctx, evt); err != nil {
			logger.Error("record click failed", "link_id", evt.LinkID, "error", err.Error())
		}
		cancel()
	}
}

// Dispatch enqueues a click without blocking. A full buffer drops the event
// and logs; losing a click is preferable to stalling the redirect.
func (d *Dispatcher) Dispatch(evt ledger.ClickEvent) {
	select {
	case d.ch <- evt:
	default:
		logger.Warn("click buffer full, dropping event", "link_id", evt.LinkID)
	}
}

// Close stops accepting events and waits for the buffer to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.ch)
		d.wg.Wait()
	})
}
