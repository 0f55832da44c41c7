package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/machwork/identity/internal/observability/logger"
)

// Config controla el buffer del dispatcher.
type Config struct {
	BufferSize int
	// DropIfFull: con buffer lleno se descarta el evento en vez de
	// bloquear el request path.
	DropIfFull bool
}

// Dispatcher desacopla la emisión de eventos del request path: los
// handlers encolan y una goroutine dedicada persiste contra el Sink.
type Dispatcher struct {
	cfg       Config
	sink      Sink
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case e := <-d.ch:
			d.persist(e)
		case <-d.done:
			// drenar lo pendiente antes de salir
			for {
				select {
				case e := <-d.ch:
					d.persist(e)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) persist(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.sink.Emit(ctx, e); err != nil {
		logger.Named("audit").Warn("audit emit failed",
			logger.Action(e.Action), logger.Err(err))
	}
}

// Emit encola un evento. Con el dispatcher cerrado es un no-op.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if d.cfg.DropIfFull {
		select {
		case d.ch <- e:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}
	select {
	case d.ch <- e:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close drena el buffer y detiene la goroutine. Idempotente.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped devuelve cuántos eventos se descartaron por buffer lleno.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
