package offapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burpeebet/foodsearch/internal/domain"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, serverURL+"/cgi/search.pl", "test-agent", 5*time.Second)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		assert.Equal(t, "banana", r.URL.Query().Get("search_terms"))
		assert.Equal(t, "1", r.URL.Query().Get("search_simple"))
		assert.Equal(t, "process", r.URL.Query().Get("action"))
		assert.Equal(t, "5", r.URL.Query().Get("page_size"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"code":"1","product_name":"Banana","nutriments":{"energy-kcal_100g":89}},
			{"code":"2","product_name":"Banana Chips","nutriments":{"energy-kcal_100g":519}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "banana", domain.ProviderSearchOptions{PageSize: 5})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Banana", results[0].Name)
	assert.Equal(t, 89, results[0].Calories)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "banana", domain.ProviderSearchOptions{})

	assert.Nil(t, results)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestSearch_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": not-json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "banana", domain.ProviderSearchOptions{})

	assert.Nil(t, results)
	assert.ErrorIs(t, err, domain.ErrProviderParse)
}

func TestGetByBarcode_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product/3017620422003", r.URL.Path)
		w.Write([]byte(`{"status":1,"product":{"code":"3017620422003","product_name":"Nutella","nutriments":{"energy-kcal_100g":539}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	record, err := client.GetByBarcode(context.Background(), "3017620422003")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Nutella", record.Name)
	assert.Equal(t, "3017620422003", record.Barcode)
}

func TestGetByBarcode_UnknownProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	record, err := client.GetByBarcode(context.Background(), "0000000000000")

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestPopularFoods_SortsByScans(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "unique_scans_n", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))
		w.Write([]byte(`{"products":[{"code":"1","product_name":"Coke","nutriments":{}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.PopularFoods(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestFoodsByCategory_SetsTagFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "categories", r.URL.Query().Get("tagtype_0"))
		assert.Equal(t, "contains", r.URL.Query().Get("tag_contains_0"))
		assert.Equal(t, "fruits", r.URL.Query().Get("tag_0"))
		w.Write([]byte(`{"products":[{"code":"1","product_name":"Apple","nutriments":{}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.FoodsByCategory(context.Background(), "fruits", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Apple", results[0].Name)
}
