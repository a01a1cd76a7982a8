package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Record is any entity that can name its own identifier.
type Record interface {
	RecordID() string
}

// Validator is implemented by entities with client-side rules.
type Validator interface {
	Validate() error
}

// Confirmer asks the operator a blocking yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// UpdateResult holds the outcome of an update. When NoContent is true the
// server returned no body and Record is the submitted payload; otherwise
// Record is the server's body verbatim.
type UpdateResult[T any] struct {
	Record    T
	NoContent bool
}

// Resource is the CRUD client for one entity type.
type Resource[T Record] struct {
	client   *Client
	endpoint Endpoint
	confirm  Confirmer
	logger   *zap.Logger
}

// NewResource binds an endpoint. A nil confirm declines every removal.
func NewResource[T Record](client *Client, endpoint Endpoint, confirm Confirmer) *Resource[T] {
	return &Resource[T]{
		client:   client,
		endpoint: endpoint,
		confirm:  confirm,
		logger:   client.logger.With(zap.String("entity", endpoint.Entity)),
	}
}

// Endpoint returns the endpoint description.
func (r *Resource[T]) Endpoint() Endpoint { return r.endpoint }

// List fetches the whole collection in server order.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	path, err := r.path(r.endpoint.listPath(), "")
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(ctx, Request{Method: http.MethodGet, Path: path, Authorized: r.endpoint.Authorized})
	if err != nil {
		return nil, err
	}
	if resp.Empty() {
		return []T{}, nil
	}

	var items []T
	if err := decode(r.endpoint.Entity, resp.Body, &items); err != nil {
		return nil, err
	}
	for i, item := range items {
		if item.RecordID() == "" {
			return nil, &DecodeError{Entity: r.endpoint.Entity, Err: fmt.Errorf("item %d: %w", i, errMissingID)}
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get fetches one record; a 404 becomes NotFoundError.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	path, err := r.path(r.endpoint.detailPath(), id)
	if err != nil {
		return zero, err
	}
	resp, err := r.client.Do(ctx, Request{Method: http.MethodGet, Path: path, Authorized: r.endpoint.Authorized})
	if err != nil {
		return zero, r.notFound(err, id)
	}
	return r.decodeOne(resp.Body)
}

// Create validates payload locally and posts it. The stored record is returned,
// or payload itself when the server answers without a body.
func (r *Resource[T]) Create(ctx context.Context, payload T) (T, error) {
	var zero T
	if err := validate(payload); err != nil {
		return zero, err
	}
	path, err := r.path(r.endpoint.Path, "")
	if err != nil {
		return zero, err
	}
	resp, err := r.client.Do(ctx, Request{Method: http.MethodPost, Path: path, Authorized: r.endpoint.Authorized, Body: payload})
	if err != nil {
		return zero, err
	}
	if resp.Empty() {
		return payload, nil
	}
	return r.decodeOne(resp.Body)
}

// Update validates payload locally and puts it to the record's path.
func (r *Resource[T]) Update(ctx context.Context, id string, payload T) (UpdateResult[T], error) {
	if err := validate(payload); err != nil {
		return UpdateResult[T]{}, err
	}
	path, err := r.path(r.endpoint.detailPath(), id)
	if err != nil {
		return UpdateResult[T]{}, err
	}
	resp, err := r.client.Do(ctx, Request{Method: http.MethodPut, Path: path, Authorized: r.endpoint.Authorized, Body: payload})
	if err != nil {
		return UpdateResult[T]{}, r.notFound(err, id)
	}
	if resp.Empty() {
		return UpdateResult[T]{Record: payload, NoContent: true}, nil
	}
	record, err := r.decodeOne(resp.Body)
	if err != nil {
		return UpdateResult[T]{}, err
	}
	return UpdateResult[T]{Record: record}, nil
}

// Remove asks for confirmation and deletes the record. It reports false
// without sending anything when the operator declines.
func (r *Resource[T]) Remove(ctx context.Context, id string) (bool, error) {
	path, err := r.path(r.endpoint.deletePath(), id)
	if err != nil {
		return false, err
	}
	if r.confirm == nil {
		r.logger.Debug("removal declined: no confirmer", zap.String("id", id))
		return false, nil
	}
	ok, err := r.confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete this %s?", r.endpoint.Entity))
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		r.logger.Debug("removal declined", zap.String("id", id))
		return false, nil
	}
	if _, err := r.client.Do(ctx, Request{Method: http.MethodDelete, Path: path, Authorized: r.endpoint.Authorized}); err != nil {
		return false, r.notFound(err, id)
	}
	return true, nil
}

func (r *Resource[T]) decodeOne(body []byte) (T, error) {
	var record T
	if err := decode(r.endpoint.Entity, body, &record); err != nil {
		return record, err
	}
	if record.RecordID() == "" {
		var zero T
		return zero, &DecodeError{Entity: r.endpoint.Entity, Err: errMissingID}
	}
	return record, nil
}

// notFound upgrades a 404 FetchError to NotFoundError.
func (r *Resource[T]) notFound(err error, id string) error {
	var fetch *FetchError
	if errors.As(err, &fetch) && fetch.Status == http.StatusNotFound {
		return &NotFoundError{Entity: r.endpoint.Entity, ID: id, Err: fetch}
	}
	return err
}

// path fills the {id} and {userId} placeholders of template.
func (r *Resource[T]) path(template, id string) (string, error) {
	if strings.Contains(template, "{id}") {
		if strings.TrimSpace(id) == "" {
			return "", fmt.Errorf("%s id is required", r.endpoint.Entity)
		}
		if strings.Contains(id, "/") {
			return "", fmt.Errorf("invalid %s id %q", r.endpoint.Entity, id)
		}
		template = strings.ReplaceAll(template, "{id}", id)
	}
	if strings.Contains(template, "{userId}") {
		userID := r.client.UserID()
		if userID == "" {
			return "", ErrNoCredentials
		}
		template = strings.ReplaceAll(template, "{userId}", userID)
	}
	return template, nil
}

func validate(payload any) error {
	if v, ok := payload.(Validator); ok {
		return v.Validate()
	}
	return nil
}
