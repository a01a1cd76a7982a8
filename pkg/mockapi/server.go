// Package mockapi serves an in-memory stand-in for the retail REST API so
// the dashboard can be exercised without the real backend.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice/pkg/api"
	"backoffice/pkg/models"
)

// requestTimeout bounds each handler's work against the store.
const requestTimeout = 3 * time.Second

// resource describes how one collection is served.
type resource struct {
	endpoint  api.Endpoint
	idField   string
	noContent bool
	validate  func(raw []byte) error
}

func validator[T api.Validator]() func([]byte) error {
	return func(raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		return v.Validate()
	}
}

// resources lists every collection. Discount updates answer 204 like the
// production API; the rest echo the stored record.
var resources = []resource{
	{endpoint: api.Products, idField: "id", validate: validator[models.Product]()},
	{endpoint: api.Categories, idField: "id", validate: validator[models.Category]()},
	{endpoint: api.Discounts, idField: "discountId", noContent: true, validate: validator[models.Discount]()},
	{endpoint: api.CoffeeBeans, idField: "beanId", validate: validator[models.CoffeeBean]()},
	{endpoint: api.Inventories, idField: "inventoryId", validate: validator[models.Inventory]()},
	{endpoint: api.Orders, idField: "orderId", validate: validator[models.Order]()},
	{endpoint: api.OrderItems, idField: "orderItemId"},
	{endpoint: api.Payments, idField: "paymentId"},
	{endpoint: api.Reviews, idField: "reviewId", validate: validator[models.Review]()},
	{endpoint: api.StaffShifts, idField: "id", validate: validator[models.StaffShift]()},
	{endpoint: api.Users, idField: "id", validate: validator[models.User]()},
}

type account struct {
	password string
	userID   int64
}

// Server wires chi routes to the channel-owned store.
type Server struct {
	store    *Store
	logger   *zap.Logger
	requests atomic.Int64

	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]int64
}

// New builds a server seeded with demo data, including the account
// admin@example.com / secret.
func New(logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	idFields := make(map[string]string, len(resources))
	for _, res := range resources {
		idFields[res.endpoint.Path] = res.idField
	}
	s := &Server{
		store:    NewStore(idFields),
		logger:   logger.Named("mockapi"),
		accounts: map[string]account{},
		tokens:   map[string]int64{},
	}
	if err := s.seed(context.Background()); err != nil {
		s.store.Close()
		return nil, fmt.Errorf("seed mock data: %w", err)
	}
	return s, nil
}

// Requests reports how many requests reached the server.
func (s *Server) Requests() int64 { return s.requests.Load() }

// Close stops the store goroutine.
func (s *Server) Close() { s.store.Close() }

// Handler exposes every route under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countRequests, s.logRequests, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/"+api.LoginPath, s.login)
		r.Post("/"+api.RegisterPath, s.register)
		for _, res := range resources {
			s.mount(r, res)
		}
	})
	return r
}

func (s *Server) mount(r chi.Router, res resource) {
	r.Group(func(r chi.Router) {
		if res.endpoint.Authorized {
			r.Use(s.requireBearer)
		}
		base := "/" + res.endpoint.Path
		r.Get(base, s.list(res))
		r.Post(base, s.create(res))
		r.Get(base+"/{id}", s.get(res))
		r.Put(base+"/{id}", s.update(res))
		r.Delete(base+"/{id}", s.remove(res))
		if res.endpoint.Path == api.Orders.Path {
			r.Get(base+"/orders/{userId}", s.listByUser(res))
			r.Delete(base+"/orders/{id}", s.remove(res))
		}
	})
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// requireBearer rejects requests without a token issued by login.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			s.respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()
		if !known {
			s.respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		records, err := s.store.List(ctx, res.endpoint.Path)
		if err != nil {
			s.logger.Error("listing failed", zap.String("collection", res.endpoint.Path), zap.Error(err))
			s.respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.respondJSON(w, http.StatusOK, records)
	}
}

// listByUser serves the user-scoped order list.
func (s *Server) listByUser(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
		if err != nil {
			s.respondError(w, "invalid user id", http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		records, err := s.store.List(ctx, res.endpoint.Path)
		if err != nil {
			s.respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		owned := make([]Record, 0, len(records))
		for _, rec := range records {
			if id, ok := asInt64(rec["userId"]); ok && id == userID {
				owned = append(owned, rec)
			}
		}
		s.respondJSON(w, http.StatusOK, owned)
	}
}

func (s *Server) get(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.pathID(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		rec, err := s.store.Get(ctx, res.endpoint.Path, id)
		if err != nil {
			s.storeError(w, res, id, err)
			return
		}
		s.respondJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) create(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := s.decodeRecord(w, r, res)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		stored, err := s.store.Create(ctx, res.endpoint.Path, rec)
		if err != nil {
			s.logger.Info("create rejected", zap.String("collection", res.endpoint.Path), zap.Error(err))
			s.respondError(w, err.Error(), http.StatusConflict)
			return
		}
		s.respondJSON(w, http.StatusCreated, stored)
	}
}

func (s *Server) update(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.pathID(w, r)
		if !ok {
			return
		}
		rec, ok := s.decodeRecord(w, r, res)
		if !ok {
			return
		}
		if bodyID, present := asInt64(rec[res.idField]); present && bodyID != 0 && bodyID != id {
			s.respondError(w, "id mismatch", http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		stored, err := s.store.Update(ctx, res.endpoint.Path, id, rec)
		if err != nil {
			s.storeError(w, res, id, err)
			return
		}
		if res.noContent {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.respondJSON(w, http.StatusOK, stored)
	}
}

func (s *Server) remove(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.pathID(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		if err := s.store.Delete(ctx, res.endpoint.Path, id); err != nil {
			s.storeError(w, res, id, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := creds.Validate(); err != nil {
		s.respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(creds.Email)]
	s.mu.Unlock()
	if !ok || acct.password != creds.Password {
		s.logger.Info("login rejected", zap.String("email", creds.Email))
		s.respondError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	rec, err := s.store.Get(ctx, api.Users.Path, acct.userID)
	if err != nil {
		s.respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = acct.userID
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, map[string]any{"token": token, "user": rec})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		s.respondError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := reg.Validate(); err != nil {
		s.respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if _, err := s.addAccount(ctx, reg); err != nil {
		if errors.Is(err, errEmailTaken) {
			s.respondError(w, err.Error(), http.StatusConflict)
			return
		}
		s.respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

var errEmailTaken = errors.New("email already registered")

// addAccount stores the user record and its credentials.
func (s *Server) addAccount(ctx context.Context, reg models.Registration) (int64, error) {
	email := strings.ToLower(reg.Email)
	s.mu.Lock()
	_, taken := s.accounts[email]
	s.mu.Unlock()
	if taken {
		return 0, errEmailTaken
	}

	rec, err := toRecord(models.User{
		FirstName:   reg.FirstName,
		LastName:    reg.LastName,
		Email:       reg.Email,
		Role:        reg.Role,
		PhoneNumber: reg.PhoneNumber,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return 0, err
	}
	delete(rec, "id")
	stored, err := s.store.Create(ctx, api.Users.Path, rec)
	if err != nil {
		return 0, err
	}
	id, _ := asInt64(stored["id"])

	s.mu.Lock()
	s.accounts[email] = account{password: reg.Password, userID: id}
	s.mu.Unlock()
	return id, nil
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeRecord parses the body and applies the entity's server-side rules.
func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request, res resource) (Record, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, "unreadable body", http.StatusBadRequest)
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		s.respondError(w, "invalid JSON", http.StatusBadRequest)
		return nil, false
	}
	if res.validate != nil {
		if err := res.validate(raw); err != nil {
			s.respondError(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	}
	return rec, true
}

func (s *Server) storeError(w http.ResponseWriter, res resource, id int64, err error) {
	if errors.Is(err, ErrNotFound) {
		s.respondError(w, fmt.Sprintf("%s %d not found", res.endpoint.Path, id), http.StatusNotFound)
		return
	}
	s.logger.Error("store operation failed", zap.String("collection", res.endpoint.Path), zap.Int64("id", id), zap.Error(err))
	s.respondError(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response failed", zap.Error(err))
	}
}

// respondError keeps JSON formatting consistent across endpoints.
func (s *Server) respondError(w http.ResponseWriter, message string, status int) {
	s.respondJSON(w, status, map[string]string{"message": message})
}
