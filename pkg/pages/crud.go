package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"backoffice/pkg/api"
	"backoffice/pkg/console"
	"backoffice/pkg/models"
	"backoffice/pkg/router"
	"backoffice/pkg/view"
)

// ListPage shows one entity table and deletes rows on request.
type ListPage[T api.Record] struct {
	deps   *Deps
	entity Entity[T]
	list   *view.List[T]
}

func newListPage[T api.Record](d *Deps, e Entity[T]) *ListPage[T] {
	res := api.NewResource[T](d.Client, e.Endpoint, d.Confirm)
	return &ListPage[T]{deps: d, entity: e, list: view.NewList[T](e.Endpoint.Entity, res, d.Notes, d.logger())}
}

// Mount fetches and renders the table.
func (p *ListPage[T]) Mount(ctx context.Context, _ router.Params) error {
	err := p.list.Load(ctx)
	if errors.Is(err, view.ErrSuperseded) {
		return nil
	}
	p.render()
	return err
}

// Delete removes one row after confirmation and re-renders the table.
func (p *ListPage[T]) Delete(ctx context.Context, id string) error {
	ok, err := p.list.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		if out := p.deps.Out; out != nil {
			out.Muted("Deletion cancelled.")
		}
		return nil
	}
	p.render()
	return nil
}

// List exposes the view state.
func (p *ListPage[T]) List() *view.List[T] { return p.list }

func (p *ListPage[T]) render() {
	out := p.deps.Out
	if out == nil {
		return
	}
	out.Title(p.entity.Title)
	switch p.list.State() {
	case view.Failed:
		out.Muted(fmt.Sprintf("Could not load %s.", strings.ToLower(p.entity.Title)))
		return
	case view.Ready:
	default:
		out.Muted("Loading...")
		return
	}
	items := p.list.Items()
	if len(items) == 0 {
		out.Muted(fmt.Sprintf("No %s found.", strings.ToLower(p.entity.Title)))
		return
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, p.entity.Row(item))
	}
	out.Table(p.entity.Columns, rows)
}

// EditPage shows one record and submits changes to it.
type EditPage[T api.Record] struct {
	deps     *Deps
	entity   Entity[T]
	resource *api.Resource[T]
	detail   *view.Detail[T]
	form     *view.Form[T]
	products []models.Product
}

func newEditPage[T api.Record](d *Deps, e Entity[T]) *EditPage[T] {
	res := api.NewResource[T](d.Client, e.Endpoint, d.Confirm)
	p := &EditPage[T]{
		deps:     d,
		entity:   e,
		resource: res,
		detail:   view.NewDetail[T](e.Endpoint.Entity, res, d.Notes, d.logger()),
	}
	p.form = view.NewForm[T](e.Endpoint.Entity, "updated", p.update, d.Notes, d.logger())
	p.form.OnSuccess(func(ctx context.Context, _ T) error {
		return d.Router.Navigate(ctx, ListPath(e.Slug))
	})
	return p
}

// Mount loads the record and, when the form needs them, the product choices.
func (p *EditPage[T]) Mount(ctx context.Context, params router.Params) error {
	id := params.Get("id")
	loaders := []view.Loader{func(ctx context.Context) error {
		_, err := p.detail.Show(ctx, id)
		return err
	}}
	if p.entity.NeedsProducts && !p.entity.ReadOnly {
		loaders = append(loaders, loadProducts(p.deps, &p.products))
	}

	err := view.LoadAll(ctx, loaders...)
	if errors.Is(err, view.ErrSuperseded) {
		return nil
	}
	p.render()
	if _, ok := p.detail.Record(); !ok {
		return p.detail.Err()
	}
	return nil
}

// SubmitJSON applies raw as a patch over the loaded record and saves it.
func (p *EditPage[T]) SubmitJSON(ctx context.Context, raw []byte) error {
	if p.entity.ReadOnly {
		return fmt.Errorf("%s: %w", p.entity.Endpoint.Entity, ErrReadOnly)
	}
	record, ok := p.detail.Record()
	if !ok {
		return fmt.Errorf("no %s loaded", p.entity.Endpoint.Entity)
	}
	id := record.RecordID()
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("invalid %s data: %w", p.entity.Endpoint.Entity, err)
	}
	if record.RecordID() != id {
		return fmt.Errorf("%s id cannot be changed from %s to %s", p.entity.Endpoint.Entity, id, record.RecordID())
	}
	_, err := p.form.Submit(ctx, record)
	return err
}

func (p *EditPage[T]) update(ctx context.Context, record T) (T, error) {
	res, err := p.resource.Update(ctx, record.RecordID(), record)
	if err != nil {
		return record, err
	}
	if res.NoContent {
		p.deps.logger().Debug("update returned no content; keeping submitted record", zap.String("entity", p.entity.Endpoint.Entity))
	}
	p.detail.Set(res.Record)
	return res.Record, nil
}

// Detail exposes the view state.
func (p *EditPage[T]) Detail() *view.Detail[T] { return p.detail }

// Products returns the loaded product choices.
func (p *EditPage[T]) Products() []models.Product { return p.products }

func (p *EditPage[T]) render() {
	out := p.deps.Out
	if out == nil {
		return
	}
	record, ok := p.detail.Record()
	if !ok {
		return
	}
	verb := "Edit"
	if p.entity.ReadOnly {
		verb = "View"
	}
	out.Title(fmt.Sprintf("%s %s %s", verb, p.entity.Endpoint.Entity, record.RecordID()))
	values := p.entity.Row(record)
	fields := make([]console.Field, 0, len(values))
	for i, label := range p.entity.Columns {
		if i < len(values) {
			fields = append(fields, console.Field{Label: label, Value: values[i]})
		}
	}
	out.Fields(fields)
	renderProducts(out, p.products)
}

// CreatePage submits a new record.
type CreatePage[T api.Record] struct {
	deps     *Deps
	entity   Entity[T]
	resource *api.Resource[T]
	form     *view.Form[T]
	products []models.Product
}

func newCreatePage[T api.Record](d *Deps, e Entity[T]) *CreatePage[T] {
	p := &CreatePage[T]{deps: d, entity: e, resource: api.NewResource[T](d.Client, e.Endpoint, d.Confirm)}
	p.form = view.NewForm[T](e.Endpoint.Entity, "created", p.resource.Create, d.Notes, d.logger())
	p.form.OnSuccess(func(ctx context.Context, _ T) error {
		return d.Router.Navigate(ctx, ListPath(e.Slug))
	})
	return p
}

func (p *CreatePage[T]) Mount(ctx context.Context, _ router.Params) error {
	if p.entity.NeedsProducts {
		// A failed product fetch is already reported and leaves the form usable.
		if err := view.LoadAll(ctx, loadProducts(p.deps, &p.products)); errors.Is(err, view.ErrSuperseded) {
			return nil
		}
	}
	if out := p.deps.Out; out != nil {
		out.Title("Create " + p.entity.Endpoint.Entity)
		renderProducts(out, p.products)
	}
	return nil
}

// SubmitJSON decodes raw into a new record and creates it.
func (p *CreatePage[T]) SubmitJSON(ctx context.Context, raw []byte) error {
	var record T
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("invalid %s data: %w", p.entity.Endpoint.Entity, err)
	}
	_, err := p.form.Submit(ctx, record)
	return err
}

// Form exposes the view state.
func (p *CreatePage[T]) Form() *view.Form[T] { return p.form }

// Products returns the loaded product choices.
func (p *CreatePage[T]) Products() []models.Product { return p.products }

func renderProducts(out *console.Renderer, products []models.Product) {
	if len(products) == 0 {
		return
	}
	rows := make([][]string, 0, len(products))
	for _, product := range products {
		rows = append(rows, []string{fmtID(product.ID), product.Name})
	}
	out.Muted("Product choices:")
	out.Table([]string{"ID", "Product"}, rows)
}
