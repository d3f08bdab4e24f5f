package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Oxford Shirt","price":999},{"id":2,"name":"Summer Dress","price":1499}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger())

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Oxford Shirt", products[0].Name)
	assert.Equal(t, 999.0, products[0].Price)
}

func TestClient_FetchProductsBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger())

	_, err := client.FetchProducts(context.Background())
	assert.Error(t, err)
}

func TestClient_FetchProductsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger())

	_, err := client.FetchProducts(context.Background())
	assert.ErrorContains(t, err, "unexpected status")
}
