package off

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

	"github.com/nutrilog/backend/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	minQueryLength = 2
)

// searchResponse is the wire shape of the Open Food Facts search endpoint
type searchResponse struct {
	Products []product `json:"products"`
}

// product is the subset of an Open Food Facts record we consume. Nutriments
// arrive as a loosely typed map whose values may be numbers or numeric strings.
type product struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	ProductNameDE   string         `json:"product_name_de"`
	GenericName     string         `json:"generic_name"`
	Brands          string         `json:"brands"`
	ImageFrontSmall string         `json:"image_front_small_url"`
	ServingQuantity any            `json:"serving_quantity"` // number or numeric string
	Nutriments      map[string]any `json:"nutriments"`
}

// Provider queries the crowd-sourced Open Food Facts database
type Provider struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewProvider creates an Open Food Facts provider
func NewProvider(baseURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// Source returns the provider's source tag
func (p *Provider) Source() domain.Source {
	return domain.SourceOpenFoodFacts
}

// Supports reports whether the query is worth sending to Open Food Facts
func (p *Provider) Supports(query string) bool {
	return len(query) >= minQueryLength
}

// Search looks up products via the legacy search endpoint. Ordinary failures
// are logged and yield an empty result list.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.ProviderResult, error) {
	endpoint := fmt.Sprintf("%s/cgi/search.pl", p.baseURL)
	params := url.Values{}
	params.Add("search_terms", query)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "NutriLog/1.0 (https://github.com/nutrilog/backend)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[OFF] request failed for %q: %v", query, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[OFF] unexpected status %d for %q: %s", resp.StatusCode, query, string(body))
		return nil, nil
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Printf("[OFF] decode error for %q: %v", query, err)
		return nil, nil
	}

	results := make([]domain.ProviderResult, 0, len(searchResp.Products))
	for _, prod := range searchResp.Products {
		if r, ok := convertProduct(prod); ok {
			results = append(results, r)
		}
		if len(results) >= limit {
			break
		}
	}

	log.Printf("[OFF] %d usable results for %q", len(results), query)
	return results, nil
}
