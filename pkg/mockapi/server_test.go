package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func login(t *testing.T, base string) (string, int64) {
	t.Helper()
	resp, body := do(t, http.MethodPost, base+"/api/Auth/login", "", map[string]string{"email": SeedEmail, "password": SeedPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token, out.User.ID
}

func TestServer_ProductsArePublic(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/Products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []map[string]any
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 3)
	assert.Equal(t, "Flat White", products[0]["name"])
}

func TestServer_OrdersRequireBearer(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/Orders/orders/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"unauthorized"}`, string(body))

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/Orders/orders/1", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, userID := login(t, ts.URL)
	resp, body = do(t, http.MethodGet, ts.URL+"/api/Orders/orders/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var orders []map[string]any
	require.NoError(t, json.Unmarshal(body, &orders))
	assert.Len(t, orders, 2, "only orders of user %d", userID)
}

func TestServer_LoginRejectsWrongPassword(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := do(t, http.MethodPost, ts.URL+"/api/Auth/login", "", map[string]string{"email": SeedEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid email or password")
}

func TestServer_RegisterThenLogin(t *testing.T) {
	_, ts := newTestServer(t)
	reg := map[string]string{
		"firstName": "Nia", "lastName": "New", "email": "nia@example.com",
		"password": "pw", "phoneNumber": "555", "role": "staff",
	}
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/Auth/register", "", reg)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/Auth/register", "", reg)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	delete(reg, "phoneNumber")
	reg["email"] = "other@example.com"
	resp, _ = do(t, http.MethodPost, ts.URL+"/api/Auth/register", "", reg)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/Auth/login", "", map[string]string{"email": "nia@example.com", "password": "pw"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_DiscountUpdateHasNoContent(t *testing.T) {
	_, ts := newTestServer(t)
	update := map[string]any{"discountId": 1, "code": "MORNING20", "description": "Before 9am", "discountPercentage": 20}

	resp, body := do(t, http.MethodPut, ts.URL+"/api/Discount/1", "", update)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/Discount/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "MORNING20")
}

func TestServer_CoffeeBeanUpdateEchoesRecord(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := do(t, http.MethodPut, ts.URL+"/api/CoffeeBean/2", "", map[string]any{"beanId": 2, "name": "Huila Reserve", "pricePerKg": 30, "stockQuantity": 12})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Huila Reserve")
	assert.Contains(t, string(body), "Colombia", "unsent fields are kept")

	resp, _ = do(t, http.MethodPut, ts.URL+"/api/CoffeeBean/99", "", map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, ts.URL+"/api/CoffeeBean/2", "", map[string]any{"beanId": 1, "name": "Wrong"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CreateValidatesAndDeletes(t *testing.T) {
	srv, ts := newTestServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/Discount", "", map[string]any{"code": "X", "description": "y", "discountPercentage": 150})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/Categories", "", map[string]any{"name": "Tea"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	assert.EqualValues(t, 3, created["id"])

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/Categories/3", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/Categories/3", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, int64(5), srv.Requests())
}

func TestStore_KeepsInsertionOrder(t *testing.T) {
	store := NewStore(map[string]string{"Things": "id"})
	defer store.Close()
	ctx := context.Background()

	for _, name := range []string{"c", "a", "b"} {
		_, err := store.Create(ctx, "Things", Record{"name": name})
		require.NoError(t, err)
	}
	require.NoError(t, store.Delete(ctx, "Things", 2))

	records, err := store.List(ctx, "Things")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0]["name"])
	assert.Equal(t, "b", records[1]["name"])

	_, err = store.Get(ctx, "Things", 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.List(ctx, "Nope")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}
