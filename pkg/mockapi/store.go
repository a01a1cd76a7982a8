package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a record is missing so handlers can respond with 404.
var ErrNotFound = errors.New("record not found")

// ErrUnknownCollection means the collection was never registered.
var ErrUnknownCollection = errors.New("unknown collection")

// Record is one JSON object as the API stores it.
type Record map[string]any

// queueTimeout bounds how long a caller waits on the store goroutine.
const queueTimeout = 2 * time.Second

// command models every operation executed against the collections.
type command struct {
	action     string
	collection string
	id         int64
	record     Record
	reply      chan commandResult
}

// commandResult forwards records or an error back to the caller.
type commandResult struct {
	record  Record
	records []Record
	err     error
}

type collection struct {
	idField string
	nextID  int64
	order   []int64
	records map[int64]Record
}

// Store owns every collection in one goroutine; handlers talk to it by channel.
type Store struct {
	commands chan command
	quit     chan struct{}

	collections map[string]*collection
}

// NewStore registers collections by name with their identifier field and
// starts the owning goroutine.
func NewStore(idFields map[string]string) *Store {
	s := &Store{
		commands:    make(chan command),
		quit:        make(chan struct{}),
		collections: make(map[string]*collection, len(idFields)),
	}
	for name, field := range idFields {
		s.collections[name] = &collection{idField: field, records: map[int64]Record{}}
	}
	go s.loop()
	return s
}

// loop processes commands sequentially so no mutexes are needed.
func (s *Store) loop() {
	for {
		select {
		case cmd := <-s.commands:
			cmd.reply <- s.apply(cmd)
		case <-s.quit:
			return
		}
	}
}

func (s *Store) apply(cmd command) commandResult {
	c, ok := s.collections[cmd.collection]
	if !ok {
		return commandResult{err: fmt.Errorf("%w: %s", ErrUnknownCollection, cmd.collection)}
	}
	switch cmd.action {
	case "list":
		out := make([]Record, 0, len(c.order))
		for _, id := range c.order {
			out = append(out, clone(c.records[id]))
		}
		return commandResult{records: out}
	case "get":
		rec, ok := c.records[cmd.id]
		if !ok {
			return commandResult{err: ErrNotFound}
		}
		return commandResult{record: clone(rec)}
	case "create":
		rec := clone(cmd.record)
		id, ok := asInt64(rec[c.idField])
		if !ok || id <= 0 {
			c.nextID++
			id = c.nextID
		} else if _, taken := c.records[id]; taken {
			return commandResult{err: fmt.Errorf("%s %d already exists", cmd.collection, id)}
		}
		if id > c.nextID {
			c.nextID = id
		}
		rec[c.idField] = id
		c.records[id] = rec
		c.order = append(c.order, id)
		return commandResult{record: clone(rec)}
	case "update":
		current, ok := c.records[cmd.id]
		if !ok {
			return commandResult{err: ErrNotFound}
		}
		merged := clone(current)
		for k, v := range cmd.record {
			merged[k] = v
		}
		merged[c.idField] = cmd.id
		c.records[cmd.id] = merged
		return commandResult{record: clone(merged)}
	case "delete":
		if _, ok := c.records[cmd.id]; !ok {
			return commandResult{err: ErrNotFound}
		}
		delete(c.records, cmd.id)
		for i, id := range c.order {
			if id == cmd.id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		return commandResult{}
	}
	return commandResult{err: fmt.Errorf("unknown store action %s", cmd.action)}
}

// send hands a command to the loop and waits for its reply.
func (s *Store) send(ctx context.Context, cmd command) commandResult {
	cmd.reply = make(chan commandResult, 1)

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return commandResult{err: ctx.Err()}
	case <-s.quit:
		return commandResult{err: errors.New("store is closed")}
	case <-time.After(queueTimeout):
		return commandResult{err: errors.New("store queue is busy")}
	}

	select {
	case res := <-cmd.reply:
		return res
	case <-ctx.Done():
		return commandResult{err: ctx.Err()}
	}
}

// List returns a collection in insertion order.
func (s *Store) List(ctx context.Context, name string) ([]Record, error) {
	res := s.send(ctx, command{action: "list", collection: name})
	return res.records, res.err
}

func (s *Store) Get(ctx context.Context, name string, id int64) (Record, error) {
	res := s.send(ctx, command{action: "get", collection: name, id: id})
	return res.record, res.err
}

// Create stores rec, assigning the next identifier when rec has none.
func (s *Store) Create(ctx context.Context, name string, rec Record) (Record, error) {
	res := s.send(ctx, command{action: "create", collection: name, record: rec})
	return res.record, res.err
}

// Update merges rec into the stored record.
func (s *Store) Update(ctx context.Context, name string, id int64, rec Record) (Record, error) {
	res := s.send(ctx, command{action: "update", collection: name, id: id, record: rec})
	return res.record, res.err
}

func (s *Store) Delete(ctx context.Context, name string, id int64) error {
	return s.send(ctx, command{action: "delete", collection: name, id: id}).err
}

// Close stops the background goroutine.
func (s *Store) Close() {
	close(s.quit)
}

// toRecord converts any JSON-encodable value into a Record.
func toRecord(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), n == float64(int64(n))
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
