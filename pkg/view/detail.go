package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"backoffice/pkg/api"
)

// Getter fetches one record.
type Getter[T api.Record] interface {
	Get(ctx context.Context, id string) (T, error)
}

// Detail holds the record shown by an edit page. Each Show supersedes the
// previous one, so a slow response for an old id never overwrites a newer one.
type Detail[T api.Record] struct {
	entity string
	source Getter[T]
	notes  Notifier
	logger *zap.Logger

	mu     sync.Mutex
	seq    uint64
	id     string
	record T
	loaded bool
	err    error
}

func NewDetail[T api.Record](entity string, source Getter[T], notes Notifier, logger *zap.Logger) *Detail[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detail[T]{
		entity: entity,
		source: source,
		notes:  orDiscard(notes),
		logger: logger.With(zap.String("view", "detail"), zap.String("entity", entity)),
	}
}

// Show loads id. It returns ErrSuperseded, leaving state alone, when another
// Show started meanwhile or ctx was cancelled.
func (d *Detail[T]) Show(ctx context.Context, id string) (T, error) {
	var zero T

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.id = id
	d.record = zero
	d.loaded = false
	d.err = nil
	d.mu.Unlock()

	record, err := d.source.Get(ctx, id)

	d.mu.Lock()
	if seq != d.seq || ctx.Err() != nil {
		d.mu.Unlock()
		d.logger.Debug("dropping stale detail response", zap.String("id", id))
		return zero, ErrSuperseded
	}
	if err != nil {
		d.err = err
		d.mu.Unlock()
		d.logger.Warn("loading record failed", zap.String("id", id), zap.Error(err))
		d.notes.Error(api.Message(err))
		return zero, err
	}
	d.record = record
	d.loaded = true
	d.mu.Unlock()
	return record, nil
}

// Record returns the loaded record and whether one is loaded.
func (d *Detail[T]) Record() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record, d.loaded
}

// Set overwrites the held record, used after a successful edit.
func (d *Detail[T]) Set(record T) {
	d.mu.Lock()
	d.record = record
	d.loaded = true
	d.mu.Unlock()
}

// ID is the identifier of the latest Show.
func (d *Detail[T]) ID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

func (d *Detail[T]) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
