// Package recorder decouples rule evaluation from evidence persistence. The
// recorder buffers records in a channel and writes them from a background
// worker, so a slow storage backend never blocks an interpretation.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"genoscope-hq/callisto/pkg/config"
	"genoscope-hq/callisto/pkg/evidence"
)

// Recorder accepts evidence records and persists them asynchronously.
type Recorder struct {
	storage evidence.Storage
	logger  *slog.Logger

	buffer       chan *evidence.Record
	writeTimeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
	drained   chan struct{}
}

// New starts a recorder writing to storage. Close must be called to flush
// buffered records.
func New(storage evidence.Storage, cfg config.RecorderConfig) *Recorder {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:      storage,
		logger:       slog.Default().With("component", "evidence.recorder"),
		buffer:       make(chan *evidence.Record, bufferSize),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
		drained:      make(chan struct{}),
	}
	go r.worker()
	return r
}

// Record enqueues one record for persistence. A missing ID or RecordedTime is
// filled in. When the buffer stays full past the write timeout the record is
// dropped and a RecorderError returned.
func (r *Recorder) Record(record *evidence.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedTime.IsZero() {
		record.RecordedTime = time.Now()
	}

	select {
	case <-r.done:
		return evidence.NewRecorderError(record.ID, context.Canceled)
	default:
	}

	select {
	case r.buffer <- record:
		return nil
	case <-time.After(r.writeTimeout):
		r.logger.Warn("evidence buffer full, dropping record",
			"record_id", record.ID,
			"drug", record.Drug,
		)
		return evidence.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-r.done:
		return evidence.NewRecorderError(record.ID, context.Canceled)
	}
}

// Close stops accepting records, drains the buffer, and returns once every
// buffered record has been written.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	<-r.drained
	return nil
}

func (r *Recorder) worker() {
	defer close(r.drained)
	for {
		select {
		case record := <-r.buffer:
			r.write(record)
		case <-r.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case record := <-r.buffer:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *evidence.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()
	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store evidence record",
			"record_id", record.ID,
			"drug", record.Drug,
			"error", err,
		)
	}
}
