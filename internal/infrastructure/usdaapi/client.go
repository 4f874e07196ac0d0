package usdaapi

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

// Client handles communication with the USDA FoodData Central API. Like the
// Open Food Facts client it issues one request per call; throttling and
// retries are caller policy.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new USDA API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

type searchResponse struct {
	Foods []food `json:"foods"`
}

type food struct {
	FdcID        int        `json:"fdcId"`
	Description  string     `json:"description"`
	BrandOwner   string     `json:"brandOwner"`
	FoodCategory string     `json:"foodCategory"`
	Nutrients    []nutrient `json:"foodNutrients"`
}

type nutrient struct {
	NutrientID   int     `json:"nutrientId"`
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// Search queries the foods/search endpoint and maps results onto canonical
// food records.
func (c *Client) Search(ctx context.Context, query string, opts domain.ProviderSearchOptions) ([]domain.FoodRecord, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	endpoint := fmt.Sprintf("%s/v1/foods/search", c.baseURL)
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Foundation,SR Legacy,Branded")
	params.Add("pageSize", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", endpoint, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[USDA] API error - status: %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderParse, err)
	}

	records := make([]domain.FoodRecord, 0, len(searchResp.Foods))
	for _, f := range searchResp.Foods {
		if f.Description == "" {
			continue
		}
		records = append(records, mapFood(f))
	}
	log.Printf("[USDA] Search %q returned %d foods", query, len(records))
	return records, nil
}

// GetByBarcode is not supported by FoodData Central; lookups always miss so
// the orchestrator falls through to its not-found path.
func (c *Client) GetByBarcode(ctx context.Context, barcode string) (*domain.FoodRecord, error) {
	return nil, nil
}
