package usda

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
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	minQueryLength = 2
)

// searchResponse is the wire shape of the FoodData Central search endpoint
type searchResponse struct {
	Foods []food `json:"foods"`
}

type food struct {
	FdcID       int64      `json:"fdcId"`
	Description string     `json:"description"`
	BrandOwner  string     `json:"brandOwner,omitempty"`
	DataType    string     `json:"dataType,omitempty"`
	Nutrients   []nutrient `json:"foodNutrients"`
}

type nutrient struct {
	NutrientID int     `json:"nutrientId"`
	UnitName   string  `json:"unitName"`
	Value      float64 `json:"value"`
}

// Provider queries the USDA FoodData Central API
type Provider struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	timeout     time.Duration
	rateLimiter *rate.Limiter
}

// NewProvider creates a USDA provider.
// requestsPerHour reflects the API key's allowance (1000/h for the free tier).
func NewProvider(apiKey, baseURL string, timeout time.Duration, requestsPerHour int) *Provider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if requestsPerHour <= 0 {
		requestsPerHour = 1000
	}

	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 10)

	return &Provider{
		httpClient:  &http.Client{},
		apiKey:      apiKey,
		baseURL:     baseURL,
		timeout:     timeout,
		rateLimiter: limiter,
	}
}

// Source returns the provider's source tag
func (p *Provider) Source() domain.Source {
	return domain.SourceUSDA
}

// Supports reports whether the query is worth sending to USDA
func (p *Provider) Supports(query string) bool {
	return len(query) >= minQueryLength
}

// Search looks up foods in FoodData Central. Ordinary failures (network,
// non-2xx, decode, timeout) are logged and yield an empty result list.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.ProviderResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/foods/search", p.baseURL)
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", p.apiKey)
	params.Add("dataType", "Survey (FNDDS),Foundation,Branded")
	params.Add("pageSize", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "NutriLog/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[USDA] request failed for %q: %v", query, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[USDA] unexpected status %d for %q: %s", resp.StatusCode, query, string(body))
		return nil, nil
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Printf("[USDA] decode error for %q: %v", query, err)
		return nil, nil
	}

	results := make([]domain.ProviderResult, 0, len(searchResp.Foods))
	for _, f := range searchResp.Foods {
		if r, ok := convertFood(f); ok {
			results = append(results, r)
		}
		if len(results) >= limit {
			break
		}
	}

	log.Printf("[USDA] %d usable results for %q", len(results), query)
	return results, nil
}
