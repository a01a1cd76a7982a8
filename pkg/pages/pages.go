// Package pages holds one canonical page per dashboard route and registers
// them with the router.
package pages

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"backoffice/pkg/api"
	"backoffice/pkg/auth"
	"backoffice/pkg/console"
	"backoffice/pkg/models"
	"backoffice/pkg/notify"
	"backoffice/pkg/router"
	"backoffice/pkg/session"
	"backoffice/pkg/view"
)

// Deps are shared by every page.
type Deps struct {
	Client   *api.Client
	Sessions *session.Store
	Router   *router.Router
	Notes    *notify.Center
	Confirm  api.Confirmer
	Auth     *auth.Service
	Out      *console.Renderer
	Logger   *zap.Logger
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Submitter is implemented by create and edit pages.
type Submitter interface {
	SubmitJSON(ctx context.Context, raw []byte) error
}

// Deleter is implemented by list pages.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// ErrReadOnly is returned when submitting to a page of a read-only entity.
var ErrReadOnly = errors.New("entity is read-only")

// Info summarizes a registered entity for command wiring.
type Info struct {
	Slug     string
	Title    string
	Singular string
	ReadOnly bool
}

// ListPath is the list route of slug.
func ListPath(slug string) string { return "/dashboard/" + slug }

// CreatePath is the create route of slug.
func CreatePath(slug string) string { return ListPath(slug) + "/create" }

// DetailPath is the edit route of one record.
func DetailPath(slug, id string) string { return ListPath(slug) + "/" + id }

// Routes registers every page and returns the entity catalogue in menu order.
func Routes(d *Deps) []Info {
	d.Router.Handle(router.LoginPath, false, func() router.Page { return &LoginPage{deps: d} })
	d.Router.Handle(auth.RegisterPath, false, func() router.Page { return &RegisterPage{deps: d} })
	d.Router.Handle(auth.HomePath, true, func() router.Page { return &DashboardPage{deps: d} })
	d.Router.Handle(ProfilePath, true, func() router.Page { return &ProfilePage{deps: d} })

	for _, e := range catalogue {
		e.register(d)
	}
	return Catalogue()
}

// ProfilePath shows the signed-in user.
const ProfilePath = auth.HomePath + "/profile"

type entry struct {
	info     Info
	register func(d *Deps)
}

func entryOf[T api.Record](e Entity[T]) entry {
	return entry{info: infoOf(e), register: func(d *Deps) { Register(d, e) }}
}

var catalogue = []entry{
	entryOf(Products),
	entryOf(Categories),
	entryOf(Discounts),
	entryOf(CoffeeBeans),
	entryOf(Inventories),
	entryOf(Orders),
	entryOf(OrderItems),
	entryOf(Payments),
	entryOf(Reviews),
	entryOf(StaffShifts),
	entryOf(Users),
}

// Catalogue lists the entities without registering anything.
func Catalogue() []Info {
	out := make([]Info, len(catalogue))
	for i, e := range catalogue {
		out[i] = e.info
	}
	return out
}

// Register adds the list, create and edit routes of one entity. Read-only
// entities get no create route and their edit page refuses submissions.
func Register[T api.Record](d *Deps, e Entity[T]) Info {
	d.Router.Handle(ListPath(e.Slug), true, func() router.Page { return newListPage(d, e) })
	if !e.ReadOnly {
		d.Router.Handle(CreatePath(e.Slug), true, func() router.Page { return newCreatePage(d, e) })
	}
	d.Router.Handle(DetailPath(e.Slug, "{id}"), true, func() router.Page { return newEditPage(d, e) })
	return infoOf(e)
}

func infoOf[T api.Record](e Entity[T]) Info {
	return Info{Slug: e.Slug, Title: e.Title, Singular: e.Endpoint.Entity, ReadOnly: e.ReadOnly}
}

// loadProducts fills the product dropdown of forms that reference a product.
// A result that arrives after ctx ended is dropped like any stale response.
func loadProducts(d *Deps, into *[]models.Product) view.Loader {
	return func(ctx context.Context) error {
		items, err := api.NewResource[models.Product](d.Client, api.Products, nil).List(ctx)
		if ctx.Err() != nil {
			return view.ErrSuperseded
		}
		if err != nil {
			d.logger().Warn("loading product choices failed", zap.Error(err))
			d.Notes.Error(fmt.Sprintf("Could not load products: %s", api.Message(err)))
			return err
		}
		*into = items
		return nil
	}
}
