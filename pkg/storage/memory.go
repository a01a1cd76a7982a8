package storage

import (
	"context"
	"fmt"
	"sync"
)

// namespaces separating local storage from cookies.
const (
	nsLocal  = "local"
	nsCookie = "cookie"
)

// memoryCommand models every operation executed against the in-memory store.
type memoryCommand struct {
	action    string
	namespace string
	key       string
	value     string
	reply     chan memoryResult
}

// memoryResult transfers either a value or an error back to the caller.
type memoryResult struct {
	value string
	found bool
	err   error
}

// Memory keeps values in maps owned by a single goroutine.
type Memory struct {
	origin    string
	commands  chan memoryCommand
	closed    chan struct{}
	closeOnce sync.Once
	values    map[string]map[string]string
}

// NewMemory starts the owning goroutine immediately.
func NewMemory(origin string) *Memory {
	m := &Memory{
		origin:   origin,
		commands: make(chan memoryCommand),
		closed:   make(chan struct{}),
		values: map[string]map[string]string{
			nsLocal:  {},
			nsCookie: {},
		},
	}
	go m.loop()
	return m
}

// loop serializes every read and mutation so no mutex guards the maps.
func (m *Memory) loop() {
	for {
		select {
		case cmd := <-m.commands:
			bucket := m.values[cmd.namespace]
			switch cmd.action {
			case "get":
				value, found := bucket[cmd.key]
				cmd.reply <- memoryResult{value: value, found: found}
			case "set":
				bucket[cmd.key] = cmd.value
				cmd.reply <- memoryResult{}
			case "remove":
				delete(bucket, cmd.key)
				cmd.reply <- memoryResult{}
			default:
				cmd.reply <- memoryResult{err: fmt.Errorf("unsupported action %s", cmd.action)}
			}
		case <-m.closed:
			return
		}
	}
}

// Origin reports the origin this store is scoped to.
func (m *Memory) Origin() string { return m.origin }

// Get reads one local storage value.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	res := m.send(ctx, memoryCommand{action: "get", namespace: nsLocal, key: key})
	return res.value, res.found, res.err
}

// Set stores one local storage value.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	return m.send(ctx, memoryCommand{action: "set", namespace: nsLocal, key: key, value: value}).err
}

// Remove deletes a local storage value.
func (m *Memory) Remove(ctx context.Context, key string) error {
	return m.send(ctx, memoryCommand{action: "remove", namespace: nsLocal, key: key}).err
}

// Cookie reads one cookie.
func (m *Memory) Cookie(ctx context.Context, name string) (string, bool, error) {
	res := m.send(ctx, memoryCommand{action: "get", namespace: nsCookie, key: name})
	return res.value, res.found, res.err
}

// SetCookie stores one cookie.
func (m *Memory) SetCookie(ctx context.Context, name, value string) error {
	return m.send(ctx, memoryCommand{action: "set", namespace: nsCookie, key: name, value: value}).err
}

// DeleteCookie removes a cookie.
func (m *Memory) DeleteCookie(ctx context.Context, name string) error {
	return m.send(ctx, memoryCommand{action: "remove", namespace: nsCookie, key: name}).err
}

// Close stops the owning goroutine.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

// send hands a command to the loop and waits for its reply.
func (m *Memory) send(ctx context.Context, cmd memoryCommand) memoryResult {
	cmd.reply = make(chan memoryResult, 1)
	select {
	case m.commands <- cmd:
	case <-ctx.Done():
		return memoryResult{err: ctx.Err()}
	case <-m.closed:
		return memoryResult{err: ErrClosed}
	}

	select {
	case res := <-cmd.reply:
		return res
	case <-ctx.Done():
		return memoryResult{err: ctx.Err()}
	}
}
