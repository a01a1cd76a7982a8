// Package router maps navigation paths to pages and applies the session
// guard uniformly to every protected route.
package router

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// LoginPath is where unauthenticated navigation ends up.
const LoginPath = "/login"

// ErrNotFound is returned when no route matches a path.
var ErrNotFound = errors.New("no route matches path")

// ErrSuperseded is returned by a navigation that a later one overtook
// before its page was installed.
var ErrSuperseded = errors.New("navigation superseded")

// Params holds the values of a route's {placeholders}.
type Params map[string]string

// Get returns the named parameter or "".
func (p Params) Get(name string) string { return p[name] }

// Page is one screen. Mount receives a context cancelled on unmount.
type Page interface {
	Mount(ctx context.Context, params Params) error
}

// Unmounter is implemented by pages that release state when left.
type Unmounter interface {
	Unmount()
}

// Factory builds a fresh page for each mount.
type Factory func() Page

// Navigator is what pages use to move elsewhere.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// Sessions reports the bearer token of the current session.
type Sessions interface {
	Token() string
}

// Location describes the mounted page.
type Location struct {
	Path    string
	Pattern string
	Params  Params
	Page    Page
}

type route struct {
	pattern   string
	segments  []string
	protected bool
	factory   Factory
}

type mounted struct {
	location Location
	cancel   context.CancelFunc
}

// Router owns the route table and the currently mounted page.
type Router struct {
	sessions Sessions
	logger   *zap.Logger

	mu      sync.Mutex
	routes  []route
	current *mounted
	seq     uint64 // bumped by every leave
}

// New builds an empty router guarded by sessions.
func New(sessions Sessions, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{sessions: sessions, logger: logger.Named("router")}
}

// Handle registers pattern. Segments written as {name} capture a parameter.
func (r *Router) Handle(pattern string, protected bool, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{
		pattern:   pattern,
		segments:  split(pattern),
		protected: protected,
		factory:   factory,
	})
}

// Navigate leaves the current page and mounts the one matching target.
// A protected route without a session token is silently redirected to
// LoginPath before its page is ever built.
func (r *Router) Navigate(ctx context.Context, target string) error {
	clean := normalize(target)
	rt, params, ok := r.match(clean)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, clean)
	}

	seq := r.leave()

	if rt.protected && r.sessions.Token() == "" {
		if clean == LoginPath {
			return fmt.Errorf("login route %s must not be protected", LoginPath)
		}
		r.logger.Debug("redirecting unauthenticated navigation", zap.String("path", clean))
		return r.Navigate(ctx, LoginPath)
	}

	page := rt.factory()
	pageCtx, cancel := context.WithCancel(ctx)
	loc := Location{Path: clean, Pattern: rt.pattern, Params: params, Page: page}

	r.mu.Lock()
	if r.seq != seq {
		r.mu.Unlock()
		cancel()
		if u, ok := page.(Unmounter); ok {
			u.Unmount()
		}
		r.logger.Debug("dropping superseded navigation", zap.String("path", clean))
		return fmt.Errorf("%w: %s", ErrSuperseded, clean)
	}
	r.current = &mounted{location: loc, cancel: cancel}
	r.mu.Unlock()

	r.logger.Debug("mounting page", zap.String("path", clean), zap.String("route", rt.pattern))
	if err := page.Mount(pageCtx, params); err != nil {
		return fmt.Errorf("mount %s: %w", clean, err)
	}
	return nil
}

// Current returns the mounted location and whether anything is mounted.
func (r *Router) Current() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Location{}, false
	}
	return r.current.location, true
}

// Close unmounts the current page.
func (r *Router) Close() {
	r.leave()
}

// leave cancels the mounted page's context and lets it release state. It
// returns the sequence a navigation must still hold to install its page.
func (r *Router) leave() uint64 {
	r.mu.Lock()
	prev := r.current
	r.current = nil
	r.seq++
	seq := r.seq
	r.mu.Unlock()
	if prev != nil {
		prev.cancel()
		if u, ok := prev.location.Page.(Unmounter); ok {
			u.Unmount()
		}
	}
	return seq
}

// match picks the route with the most static segments among those that fit.
func (r *Router) match(target string) (route, Params, bool) {
	parts := split(target)

	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		best       route
		bestParams Params
		bestScore  = -1
	)
	for _, rt := range r.routes {
		if len(rt.segments) != len(parts) {
			continue
		}
		params := Params{}
		score := 0
		fits := true
		for i, seg := range rt.segments {
			if name, ok := placeholder(seg); ok {
				params[name] = parts[i]
				continue
			}
			if seg != parts[i] {
				fits = false
				break
			}
			score++
		}
		if fits && score > bestScore {
			best, bestParams, bestScore = rt, params, score
		}
	}
	return best, bestParams, bestScore >= 0
}

func normalize(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	return path.Clean("/" + strings.TrimSpace(target))
}

func split(p string) []string {
	p = strings.Trim(normalize(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func placeholder(seg string) (string, bool) {
	if len(seg) > 2 && strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
