package pages

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"backoffice/pkg/api"
	"backoffice/pkg/console"
	"backoffice/pkg/models"
	"backoffice/pkg/router"
	"backoffice/pkg/view"
)

// LoginPage signs the operator in.
type LoginPage struct {
	deps *Deps
}

func (p *LoginPage) Mount(context.Context, router.Params) error {
	if out := p.deps.Out; out != nil {
		out.Title("Sign in")
		out.Muted("Run `backoffice login --email <email>` to sign in.")
	}
	return nil
}

// Submit posts the credentials; success navigates to the dashboard.
func (p *LoginPage) Submit(ctx context.Context, creds models.Credentials) error {
	_, err := p.deps.Auth.Login(ctx, creds)
	return err
}

// RegisterPage creates a new account.
type RegisterPage struct {
	deps *Deps
}

func (p *RegisterPage) Mount(context.Context, router.Params) error {
	if out := p.deps.Out; out != nil {
		out.Title("Create an account")
	}
	return nil
}

// Submit registers the account; success navigates to the login page.
func (p *RegisterPage) Submit(ctx context.Context, reg models.Registration) error {
	return p.deps.Auth.Register(ctx, reg)
}

// ProfilePage shows the signed-in user.
type ProfilePage struct {
	deps *Deps
}

func (p *ProfilePage) Mount(context.Context, router.Params) error {
	sess, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}
	if out := p.deps.Out; out != nil {
		u := sess.User
		out.Title("Profile")
		out.Fields([]console.Field{
			{Label: "ID", Value: strconv.FormatInt(u.ID, 10)},
			{Label: "Name", Value: u.FirstName + " " + u.LastName},
			{Label: "Email", Value: u.Email},
			{Label: "Role", Value: u.Role},
			{Label: "Phone", Value: u.PhoneNumber},
		})
	}
	return nil
}

// DashboardPage shows headline counts, each fetched independently.
type DashboardPage struct {
	deps *Deps

	mu     sync.Mutex
	counts map[string]int
}

// dashboardTiles are shown in this order.
var dashboardTiles = []string{"Products", "Categories", "Orders", "Users"}

func (p *DashboardPage) Mount(ctx context.Context, _ router.Params) error {
	p.counts = map[string]int{}
	d := p.deps
	err := view.LoadAll(ctx,
		countLoader[models.Product](p, "Products", api.NewResource[models.Product](d.Client, api.Products, nil)),
		countLoader[models.Category](p, "Categories", api.NewResource[models.Category](d.Client, api.Categories, nil)),
		countLoader[models.Order](p, "Orders", api.NewResource[models.Order](d.Client, api.Orders, nil)),
		countLoader[models.User](p, "Users", api.NewResource[models.User](d.Client, api.Users, nil)),
	)
	if errors.Is(err, view.ErrSuperseded) {
		return nil
	}

	if out := d.Out; out != nil {
		out.Title("Dashboard")
		fields := make([]console.Field, 0, len(dashboardTiles))
		for _, tile := range dashboardTiles {
			value := "unavailable"
			if n, ok := p.Count(tile); ok {
				value = strconv.Itoa(n)
			}
			fields = append(fields, console.Field{Label: tile, Value: value})
		}
		out.Fields(fields)
	}
	// One failing tile does not fail the page.
	return nil
}

// Count returns a tile's value and whether it loaded.
func (p *DashboardPage) Count(tile string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.counts[tile]
	return n, ok
}

type lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

func countLoader[T any](p *DashboardPage, tile string, src lister[T]) view.Loader {
	return func(ctx context.Context) error {
		items, err := src.List(ctx)
		if ctx.Err() != nil {
			return view.ErrSuperseded
		}
		if err != nil {
			p.deps.Notes.Error(tile + ": " + api.Message(err))
			return err
		}
		p.mu.Lock()
		p.counts[tile] = len(items)
		p.mu.Unlock()
		return nil
	}
}
