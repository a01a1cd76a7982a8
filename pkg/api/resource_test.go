package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/pkg/models"
)

type staticCreds struct{ token, userID string }

func (c staticCreds) Token() string  { return c.token }
func (c staticCreds) UserID() string { return c.userID }

// fakeAPI counts requests and lets each test mount its own routes.
type fakeAPI struct {
	router   chi.Router
	requests atomic.Int64
	server   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{router: chi.NewRouter()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.router.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) client(t *testing.T, creds Credentials) *Client {
	t.Helper()
	c, err := NewClient(f.server.URL+"/api", WithCredentials(creds))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func yes(context.Context, string) (bool, error) { return true, nil }
func no(context.Context, string) (bool, error)  { return false, nil }

func TestResource_ListPreservesServerOrder(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Get("/api/Products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Product{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	})

	products := NewResource[models.Product](f.client(t, nil), Products, nil)
	got, err := products.List(context.Background())
	require.NoError(t, err)

	want := []models.Product{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestResource_ListFetchErrorCarriesServerMessage(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Get("/api/Categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database offline"})
	})

	_, err := NewResource[models.Category](f.client(t, nil), Categories, nil).List(context.Background())

	var fetch *FetchError
	require.True(t, errors.As(err, &fetch))
	assert.Equal(t, http.StatusInternalServerError, fetch.Status)
	assert.Equal(t, "database offline", fetch.Message)
}

func TestResource_NetworkError(t *testing.T) {
	f := newFakeAPI(t)
	c := f.client(t, nil)
	f.server.Close()

	_, err := NewResource[models.Category](c, Categories, nil).List(context.Background())

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, http.MethodGet, netErr.Method)
}

func TestResource_GetNotFound(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Get("/api/CoffeeBean/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "CoffeeBean not found"})
	})

	_, err := NewResource[models.CoffeeBean](f.client(t, nil), CoffeeBeans, nil).Get(context.Background(), "42")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "42", nf.ID)
	assert.Equal(t, "CoffeeBean not found", Message(err))

	var fetch *FetchError
	assert.True(t, errors.As(err, &fetch), "NotFoundError unwraps to the FetchError")
}

func TestResource_RejectsRecordsWithoutIdentifier(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Get("/api/Users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"firstName": "no id"}})
	})
	f.router.Get("/api/Users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id": "not-a-number"}`)
	})

	users := NewResource[models.User](f.client(t, nil), Users, nil)

	_, err := users.List(context.Background())
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))

	_, err = users.Get(context.Background(), "1")
	require.True(t, errors.As(err, &decodeErr))
}

func TestResource_CreateDiscountOutOfRangeNeverHitsNetwork(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Post("/api/Discount", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("create must not reach the server")
	})

	discounts := NewResource[models.Discount](f.client(t, nil), Discounts, nil)
	_, err := discounts.Create(context.Background(), models.Discount{
		Code: "BIG", Description: "too generous", DiscountPercentage: 150,
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("discountPercentage"))
	assert.Zero(t, f.requests.Load())
}

func TestResource_CreateReturnsStoredRecord(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Post("/api/Categories", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"), "categories are public")

		var in models.Category
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = 10
		writeJSON(w, http.StatusCreated, in)
	})

	got, err := NewResource[models.Category](f.client(t, staticCreds{token: "tok"}), Categories, nil).
		Create(context.Background(), models.Category{Name: "Tea"})
	require.NoError(t, err)
	assert.Equal(t, models.Category{ID: 10, Name: "Tea"}, got)
}

func TestResource_UpdateNoContentUsesSubmittedPayload(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Put("/api/Discount/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	payload := models.Discount{DiscountID: 5, Code: "NEW", Description: "edited", DiscountPercentage: 20}
	res, err := NewResource[models.Discount](f.client(t, nil), Discounts, nil).
		Update(context.Background(), "5", payload)
	require.NoError(t, err)
	assert.True(t, res.NoContent)
	assert.Equal(t, payload, res.Record)
}

func TestResource_UpdateWithBodyUsesServerRecord(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Put("/api/CoffeeBean/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.CoffeeBean{BeanID: 5, Name: "Server Name", PricePerKg: 30, StockQuantity: 4})
	})

	res, err := NewResource[models.CoffeeBean](f.client(t, nil), CoffeeBeans, nil).
		Update(context.Background(), "5", models.CoffeeBean{BeanID: 5, Name: "Local Name", PricePerKg: 10})
	require.NoError(t, err)
	assert.False(t, res.NoContent)
	assert.Equal(t, models.CoffeeBean{BeanID: 5, Name: "Server Name", PricePerKg: 30, StockQuantity: 4}, res.Record)
}

func TestResource_UpdateConflictMessage(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Put("/api/CoffeeBean/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	_, err := NewResource[models.CoffeeBean](f.client(t, nil), CoffeeBeans, nil).
		Update(context.Background(), "5", models.CoffeeBean{Name: "x"})
	assert.Equal(t, "concurrency conflict", Message(err))
}

func TestResource_RemoveDeclinedSendsNothing(t *testing.T) {
	f := newFakeAPI(t)
	var prompts []string
	confirm := ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		prompts = append(prompts, prompt)
		return false, nil
	})

	ok, err := NewResource[models.Product](f.client(t, nil), Products, confirm).Remove(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, f.requests.Load())
	assert.Equal(t, []string{"Are you sure you want to delete this product?"}, prompts)

	ok, err = NewResource[models.Product](f.client(t, nil), Products, nil).Remove(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, ok, "a nil confirmer declines")
	assert.Zero(t, f.requests.Load())
}

func TestResource_RemoveConfirmed(t *testing.T) {
	f := newFakeAPI(t)
	var deleted string
	f.router.Delete("/api/Products/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = chi.URLParam(r, "id")
		w.WriteHeader(http.StatusNoContent)
	})

	ok, err := NewResource[models.Product](f.client(t, nil), Products, ConfirmFunc(yes)).Remove(context.Background(), "9")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "9", deleted)
}

func TestResource_OrdersAreUserScopedAndAuthorized(t *testing.T) {
	f := newFakeAPI(t)
	f.router.Get("/api/Orders/orders/{userId}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "7", chi.URLParam(r, "userId"))
		writeJSON(w, http.StatusOK, []models.Order{{OrderID: 1, UserID: 7, OrderStatus: "pending"}})
	})
	f.router.Delete("/api/Orders/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	orders := NewResource[models.Order](f.client(t, staticCreds{token: "tok", userID: "7"}), Orders, ConfirmFunc(yes))
	got, err := orders.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	ok, err := orders.Remove(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResource_OrdersWithoutSessionFailLocally(t *testing.T) {
	f := newFakeAPI(t)
	orders := NewResource[models.Order](f.client(t, staticCreds{}), Orders, ConfirmFunc(no))

	_, err := orders.List(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = orders.Get(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Zero(t, f.requests.Load())
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)
	_, err = NewClient("://")
	assert.Error(t, err)
}
