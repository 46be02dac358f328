package edamam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nutrilog/backend/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	minQueryLength = 2
)

// parserResponse is the wire shape of the Edamam food-database parser endpoint
type parserResponse struct {
	Hints []hint `json:"hints"`
}

type hint struct {
	Food     foodInfo  `json:"food"`
	Measures []measure `json:"measures"`
}

// foodInfo carries Edamam's per-100g nutrient set. Keys follow their nutrient
// codes: ENERC_KCAL (kcal), PROCNT (protein g), CHOCDF (carbs g), FAT (fat g),
// FIBTG (fiber g), SUGAR (sugar g), NA (sodium mg).
type foodInfo struct {
	FoodID    string             `json:"foodId"`
	Label     string             `json:"label"`
	Brand     string             `json:"brand"`
	Image     string             `json:"image"`
	Nutrients map[string]float64 `json:"nutrients"`
}

type measure struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// Provider queries the Edamam food database API
type Provider struct {
	httpClient *http.Client
	appID      string
	appKey     string
	baseURL    string
	timeout    time.Duration
}

// NewProvider creates an Edamam provider
func NewProvider(appID, appKey, baseURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{
		httpClient: &http.Client{},
		appID:      appID,
		appKey:     appKey,
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// Source returns the provider's source tag
func (p *Provider) Source() domain.Source {
	return domain.SourceEdamam
}

// Supports reports whether the query is worth sending to Edamam
func (p *Provider) Supports(query string) bool {
	return len(query) >= minQueryLength
}

// Search looks up foods via the parser endpoint. Ordinary failures are logged
// and yield an empty result list.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.ProviderResult, error) {
	endpoint := fmt.Sprintf("%s/api/food-database/v2/parser", p.baseURL)
	params := url.Values{}
	params.Add("app_id", p.appID)
	params.Add("app_key", p.appKey)
	params.Add("ingr", query)

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
		log.Printf("[EDAMAM] request failed for %q: %v", query, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[EDAMAM] unexpected status %d for %q: %s", resp.StatusCode, query, string(body))
		return nil, nil
	}

	var parsed parserResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("[EDAMAM] decode error for %q: %v", query, err)
		return nil, nil
	}

	results := make([]domain.ProviderResult, 0, len(parsed.Hints))
	seen := make(map[string]bool)
	for _, h := range parsed.Hints {
		r, ok := convertHint(h)
		if !ok || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		results = append(results, r)
		if len(results) >= limit {
			break
		}
	}

	log.Printf("[EDAMAM] %d usable results for %q", len(results), query)
	return results, nil
}

// convertHint maps one parser hint to the normalized result shape.
// Returns ok=false for items with no name or no usable nutrition data.
// Edamam reports absent nutrients by omitting the key, so a missing macro is
// indistinguishable from a true zero here.
func convertHint(h hint) (domain.ProviderResult, bool) {
	name := strings.TrimSpace(h.Food.Label)
	if name == "" {
		return domain.ProviderResult{}, false
	}

	per100g := domain.Per100g{
		Kcal:     domain.RoundKcal(h.Food.Nutrients["ENERC_KCAL"]),
		ProteinG: domain.Round1(h.Food.Nutrients["PROCNT"]),
		CarbsG:   domain.Round1(h.Food.Nutrients["CHOCDF"]),
		FatG:     domain.Round1(h.Food.Nutrients["FAT"]),
	}
	if fiber, ok := h.Food.Nutrients["FIBTG"]; ok {
		v := domain.Round1(fiber)
		per100g.FiberG = &v
	}
	if sugar, ok := h.Food.Nutrients["SUGAR"]; ok {
		v := domain.Round1(sugar)
		per100g.SugarG = &v
	}
	if sodium, ok := h.Food.Nutrients["NA"]; ok {
		v := domain.Round1(sodium)
		per100g.SodiumMg = &v
	}
	if per100g.Empty() {
		return domain.ProviderResult{}, false
	}

	return domain.ProviderResult{
		ID:               h.Food.FoodID,
		Name:             name,
		Brand:            strings.TrimSpace(h.Food.Brand),
		Per100g:          per100g,
		ServingSizeGrams: servingWeight(h.Measures),
		ImageURL:         h.Food.Image,
	}, true
}

// servingWeight picks the gram weight of the measure labeled "Serving", if any
func servingWeight(measures []measure) float64 {
	for _, m := range measures {
		if strings.EqualFold(m.Label, "Serving") && m.Weight > 0 {
			return m.Weight
		}
	}
	return 0
}
