package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	auditDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
)

type job struct {
	ctx context.Context
	log *auditDatamodel.AuditLog
}

type worker struct {
	id         int
	workerPool chan chan job
	jobChannel chan job
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan job, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan job),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, process func(job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.workerPool <- w.jobChannel:
			case <-ctx.Done():
				w.logger.Debug("audit worker shutting down", "worker_id", w.id)
				return
			}

			select {
			case j := <-w.jobChannel:
				process(j)
			case <-ctx.Done():
				w.logger.Debug("audit worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

var errDispatcherClosed = errors.New("audit dispatcher closed")

type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

// Dispatcher persists audit rows on a bounded worker pool. Submit never
// blocks: a full queue drops the row and counts it.
type Dispatcher struct {
	sink   *SyncSink
	logger *slog.Logger

	jobQueue   chan job
	workerPool chan chan job
	maxWorkers int
	// intake orders Submit against Shutdown: submitters hold it shared while
	// enqueueing, Shutdown takes it exclusively to close the queue.
	intake     sync.RWMutex
	closed     atomic.Bool
	pending    atomic.Int64
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewDispatcher(writer Writer, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}

	d := &Dispatcher{
		sink:       NewSyncSink(writer, logger),
		logger:     logger,
		jobQueue:   make(chan job, queueSize),
		workerPool: make(chan chan job, maxWorkers),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			newWorker(i, d.workerPool, d.logger).start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("audit dispatcher started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) process(j job) {
	defer d.pending.Add(-1)
	queueDepth.Set(float64(len(d.jobQueue)))
	d.sink.Submit(j.ctx, j.log)
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case j := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- j:
				case <-d.ctx.Done():
					d.logger.Info("audit dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.logger.Info("audit dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("audit dispatcher shutting down")
			return
		}
	}
}

func (d *Dispatcher) Submit(ctx context.Context, log *auditDatamodel.AuditLog) {
	d.intake.RLock()
	defer d.intake.RUnlock()

	if d.closed.Load() {
		entriesDropped.Inc()
		d.logger.Warn("audit dispatcher closed, dropping entry", "action", log.Action, "audit_id", log.ID)
		return
	}

	d.pending.Add(1)
	select {
	case d.jobQueue <- job{ctx: ctx, log: log}:
		queueDepth.Set(float64(len(d.jobQueue)))
	default:
		d.pending.Add(-1)
		entriesDropped.Inc()
		d.logger.Warn("audit queue full, dropping entry",
			"action", log.Action,
			"resource", log.Resource,
			"queue_capacity", cap(d.jobQueue))
	}
}

// Shutdown stops intake, waits for queued and in-flight rows until ctx
// expires, then stops the workers.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.logger.Info("shutting down audit dispatcher")
	d.intake.Lock()
	d.closed.Store(true)
	d.intake.Unlock()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
drain:
	for d.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			d.logger.Warn("audit dispatcher drain timed out", "pending", d.pending.Load())
			break drain
		case <-ticker.C:
		}
	}

	d.cancel()
	d.wg.Wait()

	if lost := d.pending.Swap(0); lost > 0 {
		entriesDropped.Add(float64(lost))
		d.logger.Warn("audit entries abandoned at shutdown", "count", lost)
	}
	d.logger.Info("audit dispatcher shutdown complete")
}

// Check reports the dispatcher as unhealthy once it is closed or its queue
// is saturated.
func (d *Dispatcher) Check(context.Context) error {
	if d.closed.Load() {
		return errDispatcherClosed
	}
	if len(d.jobQueue) >= cap(d.jobQueue) {
		return fmt.Errorf("audit queue full (%d entries)", cap(d.jobQueue))
	}
	return nil
}
