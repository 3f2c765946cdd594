package db

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"
)

const (
	defaultQueueSize     = 1024
	defaultBatchSize     = 64
	defaultFlushInterval = time.Second
	writeTimeout         = 5 * time.Second
)

// WriterConfig tunes the asynchronous access log writer.
type WriterConfig struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// AsyncWriter queues access records and writes them to the store in batches
// so request handling never waits on SQLite.
type AsyncWriter struct {
	store   Service
	config  WriterConfig
	queue   chan *models.AccessRecord
	stopCh  chan struct{}
	done    chan struct{}
	dropped atomic.Uint64
	mu      sync.RWMutex // guards closed against in-flight sends
	closed  bool
	once    sync.Once
	started atomic.Bool
}

// NewAsyncWriter creates a writer for the given store.
func NewAsyncWriter(store Service, config WriterConfig) *AsyncWriter {
	if config.QueueSize <= 0 {
		config.QueueSize = defaultQueueSize
	}

	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}

	if config.FlushInterval <= 0 {
		config.FlushInterval = defaultFlushInterval
	}

	return &AsyncWriter{
		store:  store,
		config: config,
		queue:  make(chan *models.AccessRecord, config.QueueSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Record enqueues a record. It drops the record when the queue is full.
func (w *AsyncWriter) Record(rec *models.AccessRecord) {
	if err := w.Enqueue(rec); err != nil {
		w.dropped.Add(1)
	}
}

// Enqueue adds a record to the queue without blocking.
func (w *AsyncWriter) Enqueue(rec *models.AccessRecord) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrWriterClosed
	}

	select {
	case w.queue <- rec:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dropped returns how many records were discarded.
func (w *AsyncWriter) Dropped() uint64 {
	return w.dropped.Load()
}

// Start starts the writer loop.
func (w *AsyncWriter) Start() {
	if w.started.CompareAndSwap(false, true) {
		go w.run()
	}
}

// Stop flushes queued records and stops the writer loop. Records still queued
// on a writer that was never started are counted as dropped.
func (w *AsyncWriter) Stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()

		close(w.stopCh)

		if !w.started.Load() {
			w.dropped.Add(uint64(len(w.queue)))
		}
	})

	if w.started.Load() {
		<-w.done
	}
}

func (w *AsyncWriter) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*models.AccessRecord, 0, w.config.BatchSize)

	for {
		select {
		case rec := <-w.queue:
			batch = append(batch, rec)
			if len(batch) >= w.config.BatchSize {
				batch = w.flush(batch)
			}
		case <-ticker.C:
			batch = w.flush(batch)
		case <-w.stopCh:
			w.drain(batch)
			log.Println("Access log writer stopped")

			return
		}
	}
}

func (w *AsyncWriter) drain(batch []*models.AccessRecord) {
	for {
		select {
		case rec := <-w.queue:
			batch = append(batch, rec)
			if len(batch) >= w.config.BatchSize {
				batch = w.flush(batch)
			}
		default:
			w.flush(batch)

			return
		}
	}
}

func (w *AsyncWriter) flush(batch []*models.AccessRecord) []*models.AccessRecord {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.store.InsertAccessBatch(ctx, batch); err != nil {
		log.Printf("Error writing %d access records: %v", len(batch), err)
		w.dropped.Add(uint64(len(batch)))
	}

	return batch[:0]
}
