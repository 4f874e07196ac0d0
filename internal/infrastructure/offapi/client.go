package offapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// searchFields is the field list requested from the search endpoint so
// responses stay small and map cleanly onto FoodRecord.
const searchFields = "code,product_name,brands,categories,nutriments,serving_size,serving_quantity"

// Client handles communication with the Open Food Facts API. It issues one
// request per call and never retries or throttles internally; rate-limit
// discipline belongs to the caller so interactive search and batch seeding
// can apply different policies.
type Client struct {
	httpClient *http.Client
	baseURL    string
	searchURL  string
	userAgent  string
}

// NewClient creates a new Open Food Facts API client.
func NewClient(baseURL, searchURL, userAgent string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		searchURL:  searchURL,
		userAgent:  userAgent,
	}
}

// searchResponse is the wire shape of the OFF search endpoint.
type searchResponse struct {
	Products []product `json:"products"`
}

// productResponse is the wire shape of the OFF by-barcode endpoint.
type productResponse struct {
	Status  int     `json:"status"`
	Product product `json:"product"`
}

// Search queries the free-text search endpoint and maps the products onto
// canonical food records. Products without a name or nutriment block are
// dropped.
func (c *Client) Search(ctx context.Context, query string, opts domain.ProviderSearchOptions) ([]domain.FoodRecord, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Add("search_terms", query)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", strconv.Itoa(pageSize))
	params.Add("page", strconv.Itoa(page))
	params.Add("fields", searchFields)

	var resp searchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s?%s", c.searchURL, params.Encode()), &resp); err != nil {
		return nil, err
	}

	log.Printf("[OFF] Search %q returned %d products", query, len(resp.Products))
	return mapProducts(resp.Products), nil
}

// GetByBarcode looks up a single product by barcode. Returns (nil, nil)
// when the provider reports the product as unknown.
func (c *Client) GetByBarcode(ctx context.Context, barcode string) (*domain.FoodRecord, error) {
	var resp productResponse
	reqURL := fmt.Sprintf("%s/product/%s", c.baseURL, url.PathEscape(barcode))
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}

	if resp.Status == 0 {
		return nil, nil
	}

	record := mapProduct(resp.Product)
	if record == nil {
		return nil, nil
	}
	return record, nil
}

// PopularFoods returns the provider's most-scanned products. Used to seed
// the cache, not by live search.
func (c *Client) PopularFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error) {
	params := url.Values{}
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", strconv.Itoa(limit))
	params.Add("sort_by", "unique_scans_n")
	params.Add("fields", searchFields)

	var resp searchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s?%s", c.searchURL, params.Encode()), &resp); err != nil {
		return nil, err
	}
	return mapProducts(resp.Products), nil
}

// FoodsByCategory returns products tagged with the given category. Used to
// seed the cache.
func (c *Client) FoodsByCategory(ctx context.Context, category string, limit int) ([]domain.FoodRecord, error) {
	params := url.Values{}
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", strconv.Itoa(limit))
	params.Add("tagtype_0", "categories")
	params.Add("tag_contains_0", "contains")
	params.Add("tag_0", category)
	params.Add("fields", searchFields)

	var resp searchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s?%s", c.searchURL, params.Encode()), &resp); err != nil {
		return nil, err
	}
	return mapProducts(resp.Products), nil
}

// getJSON executes a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[OFF] API error - status: %d, body: %s", resp.StatusCode, string(body))
		return fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderParse, err)
	}
	return nil
}
