// Package taste wraps the cultural recommendation provider's scored-entity
// search API. Response shapes from the provider are duck-typed (results
// arrive as an array or an object-of-values depending on the query); this
// adapter normalizes them into one typed slice so ambiguity never leaks
// past the boundary.
package taste

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/jsonutil"
)

// Entity URNs accepted by the provider's filter.type parameter.
const (
	EntityBrand = "urn:entity:brand"
	EntityPlace = "urn:entity:place"
)

// Demographic age buckets accepted by the provider.
const (
	Age24AndYounger = "24_and_younger"
	Age25To29       = "25_to_29"
	Age30To34       = "30_to_34"
	Age35To44       = "35_to_44"
	Age45To54       = "45_to_54"
	AgeSenior       = "55_and_older"

	// AgeYoungAdult is the default bucket when a profile has no usable
	// age range.
	AgeYoungAdult = Age25To29
)

// GeoPoint is a provider-reported entity location.
type GeoPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Region string  `json:"region,omitempty"`
}

// ScoredEntity is one normalized search result.
type ScoredEntity struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category,omitempty"`
	Affinity       float64         `json:"affinity"`
	Popularity     float64         `json:"popularity,omitempty"`
	Geo            *GeoPoint       `json:"geo,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	Explainability json.RawMessage `json:"explainability,omitempty"`
}

// InsightsQuery describes one scored-entity search.
type InsightsQuery struct {
	EntityType      string  // EntityBrand or EntityPlace
	Age             string  // demographic bucket
	Gender          string  // "male" or "female" (provider limitation)
	LocationWKT     string  // WKT POINT
	PopularityFloor float64 // minimum popularity, 0 to disable
	TrendsBias      string  // e.g. "high", empty to omit
	Take            int
	Explainability  bool
}

// Client calls the recommendation provider.
type Client interface {
	// GetInsights runs one scored-entity search.
	GetInsights(ctx context.Context, query *InsightsQuery) ([]*ScoredEntity, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a recommendation provider client.
func NewClient(baseURL, apiKey string, logger *zap.Logger) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger.Named("taste"),
	}
}

func (c *httpClient) GetInsights(ctx context.Context, query *InsightsQuery) ([]*ScoredEntity, error) {
	params := url.Values{}
	params.Set("filter.type", query.EntityType)
	if query.Age != "" {
		params.Set("signal.demographics.age", query.Age)
	}
	if query.Gender != "" {
		params.Set("signal.demographics.gender", query.Gender)
	}
	if query.LocationWKT != "" {
		params.Set("signal.location", query.LocationWKT)
	}
	if query.PopularityFloor > 0 {
		params.Set("filter.popularity.min", strconv.FormatFloat(query.PopularityFloor, 'f', -1, 64))
	}
	if query.TrendsBias != "" {
		params.Set("bias.trends", query.TrendsBias)
	}
	if query.Take > 0 {
		params.Set("take", strconv.Itoa(query.Take))
	}
	if query.Explainability {
		params.Set("feature.explainability", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/insights?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build insights request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insights request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("insights request: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode insights response: %w", err)
	}

	entities := normalizeResults(body.Results)

	c.logger.Debug("Insights query completed",
		zap.String("entity_type", query.EntityType),
		zap.Int("results", len(entities)),
		zap.Duration("elapsed", time.Since(start)))

	return entities, nil
}

// normalizeResults accepts the provider's results value in either of its
// observed shapes and drops entries without an id and name.
func normalizeResults(raw json.RawMessage) []*ScoredEntity {
	items := jsonutil.FlexibleList(raw)
	entities := make([]*ScoredEntity, 0, len(items))
	for _, item := range items {
		var e ScoredEntity
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		if e.ID == "" || e.Name == "" {
			continue
		}
		entities = append(entities, &e)
	}
	return entities
}
