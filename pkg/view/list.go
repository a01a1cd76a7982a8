package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"backoffice/pkg/api"
)

// State of a list view.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "idle"
}

// ListSource is the slice of a resource a list view needs.
type ListSource[T api.Record] interface {
	List(ctx context.Context) ([]T, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// List caches one entity collection for a table view. The cache is only
// replaced wholesale by Load and shrunk by a confirmed Delete.
type List[T api.Record] struct {
	entity string
	source ListSource[T]
	notes  Notifier
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	items      []T
	err        error
	generation uint64
	deleting   bool
}

// NewList starts in Idle; call Load on mount.
func NewList[T api.Record](entity string, source ListSource[T], notes Notifier, logger *zap.Logger) *List[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List[T]{
		entity: entity,
		source: source,
		notes:  orDiscard(notes),
		logger: logger.With(zap.String("view", "list"), zap.String("entity", entity)),
	}
}

// Load fetches the collection and stores it in server order. On failure
// the list is emptied and the error retained. A load overtaken by a newer
// one, or finishing after ctx is done, changes nothing and returns
// ErrSuperseded.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.state = Loading
	l.err = nil
	l.mu.Unlock()

	items, err := l.source.List(ctx)

	l.mu.Lock()
	if gen != l.generation || ctx.Err() != nil {
		l.mu.Unlock()
		l.logger.Debug("dropping stale list response")
		return ErrSuperseded
	}
	if err != nil {
		l.state = Failed
		l.items = nil
		l.err = err
		l.mu.Unlock()
		l.logger.Warn("loading list failed", zap.Error(err))
		l.notes.Error(api.Message(err))
		return err
	}
	l.state = Ready
	l.items = items
	l.mu.Unlock()
	return nil
}

// Delete removes one record after confirmation. Only one delete may be in
// flight; a second call while one is pending returns ErrDeleteInFlight and
// does nothing. It reports false when the operator declined.
func (l *List[T]) Delete(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	if l.state != Ready {
		l.mu.Unlock()
		return false, ErrNotReady
	}
	if l.deleting {
		l.mu.Unlock()
		return false, ErrDeleteInFlight
	}
	l.deleting = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.deleting = false
		l.mu.Unlock()
	}()

	ok, err := l.source.Remove(ctx, id)
	if err != nil {
		l.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		l.notes.Error(api.Message(err))
		return false, err
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	kept := make([]T, 0, len(l.items))
	for _, item := range l.items {
		if item.RecordID() != id {
			kept = append(kept, item)
		}
	}
	l.items = kept
	l.mu.Unlock()

	l.notes.Success(pastTense(l.entity, "deleted"))
	return true, nil
}

// Items returns a copy of the cached records; never nil.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err is the error of the last failed load.
func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Deleting reports whether a delete is pending.
func (l *List[T]) Deleting() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deleting
}
