package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/directory"
	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/taste"
	"github.com/onbloom-hq/onbloom-engine/pkg/apperrors"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// usCentroidWKT is the fallback geo signal when a location string cannot
// be matched to a known city.
const usCentroidWKT = "POINT(-98.5795 39.8283)"

// cityWKT maps lowercase city substrings to WKT points for the
// recommendation provider's location signal.
var cityWKT = map[string]string{
	"san francisco": "POINT(-122.4194 37.7749)",
	"new york":      "POINT(-74.0060 40.7128)",
	"los angeles":   "POINT(-118.2437 34.0522)",
	"chicago":       "POINT(-87.6298 41.8781)",
	"boston":        "POINT(-71.0589 42.3601)",
	"seattle":       "POINT(-122.3321 47.6062)",
	"austin":        "POINT(-97.7431 30.2672)",
	"denver":        "POINT(-104.9903 39.7392)",
	"atlanta":       "POINT(-84.3880 33.7490)",
	"miami":         "POINT(-80.1918 25.7617)",
	"dallas":        "POINT(-96.7970 32.7767)",
	"houston":       "POINT(-95.3698 29.7604)",
	"philadelphia":  "POINT(-75.1652 39.9526)",
	"phoenix":       "POINT(-112.0740 33.4484)",
	"san diego":     "POINT(-117.1611 32.7157)",
	"portland":      "POINT(-122.6765 45.5152)",
	"washington":    "POINT(-77.0369 38.9072)",
	"dc":            "POINT(-77.0369 38.9072)",
}

// locationToWKT converts a free-form location string to a WKT point,
// defaulting to the US centroid when no city matches.
func locationToWKT(location string) string {
	lower := strings.ToLower(strings.TrimSpace(location))
	for city, wkt := range cityWKT {
		if strings.Contains(lower, city) {
			return wkt
		}
	}
	return usCentroidWKT
}

// ageRangeToGroup maps directory age brackets to the provider's
// demographic buckets. Unknown brackets return "".
func ageRangeToGroup(ageRange string) string {
	switch ageRange {
	case "18-25":
		return taste.Age24AndYounger
	case "26-35":
		return taste.Age30To34
	case "36-45":
		return taste.Age35To44
	case "46-55":
		return taste.Age45To54
	case "56-65", "65+":
		return taste.AgeSenior
	}
	return ""
}

// normalizeGender collapses a free-form gender identity to the provider's
// binary expectation.
func normalizeGender(genderIdentity string) string {
	if strings.ToLower(genderIdentity) == "male" {
		return "male"
	}
	return "female"
}

// occasionTags maps an occasion string to search tags.
func occasionTags(occasion string) []string {
	if occasion == "" {
		return nil
	}

	tagsByOccasion := []struct {
		key  string
		tags []string
	}{
		{"anniversary", []string{"celebration", "milestone", "achievement"}},
		{"birthday", []string{"celebration", "personal", "fun"}},
		{"retirement", []string{"milestone", "farewell", "recognition"}},
		{"promotion", []string{"achievement", "professional", "celebration"}},
		{"farewell", []string{"goodbye", "memory", "appreciation"}},
		{"welcome", []string{"onboarding", "welcome", "team"}},
		{"holiday", []string{"seasonal", "festive", "gift"}},
		{"team celebration", []string{"team", "group", "celebration"}},
	}

	lower := strings.ToLower(occasion)
	for _, entry := range tagsByOccasion {
		if strings.Contains(lower, entry.key) {
			return entry.tags
		}
	}
	return []string{"gift", "appreciation"}
}

// brandGifts maps well-known brands to concrete gift ideas.
var brandGifts = map[string][]string{
	"Apple":       {"AirPods", "Apple Gift Card", "iPad Accessories", "Apple Watch Band"},
	"Amazon":      {"Kindle", "Echo Dot", "Amazon Gift Card", "Prime Membership"},
	"Starbucks":   {"Gift Card", "Tumbler Set", "Coffee Bean Subscription", "Merchandise Bundle"},
	"Nike":        {"Gift Card", "Sneakers", "Gym Bag", "Athletic Wear"},
	"Patagonia":   {"Fleece Jacket", "Backpack", "Water Bottle", "Gift Card"},
	"Moleskine":   {"Notebook Set", "Pen Collection", "Digital Writing Set", "Planner"},
	"LEGO":        {"Architecture Set", "Ideas Set", "Botanical Collection", "Display Set"},
	"MasterClass": {"Annual Subscription", "Gift Subscription", "Course Bundle"},
	"Spotify":     {"Premium Subscription", "Gift Card", "Merchandise"},
	"Headspace":   {"Annual Subscription", "Meditation Bundle", "Gift Membership"},
}

// suggestedGiftsForBrand returns concrete gift ideas for a brand.
// Retirement occasions drop subscription suggestions.
func suggestedGiftsForBrand(brandName, occasion string) []string {
	suggestions, ok := brandGifts[brandName]
	if !ok {
		suggestions = []string{"Gift Card", "Brand Merchandise", "Product Bundle"}
	}

	if strings.Contains(strings.ToLower(occasion), "retirement") {
		filtered := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			if !strings.Contains(strings.ToLower(s), "subscription") {
				filtered = append(filtered, s)
			}
		}
		return filtered
	}
	return suggestions
}

// RecommendationRequest asks for gift ideas for one recipient.
type RecommendationRequest struct {
	RecipientID string             `json:"recipientId"`
	Interests   []string           `json:"interests,omitempty"`
	Occasion    string             `json:"occasion,omitempty"`
	PriceRange  *models.PriceRange `json:"priceRange,omitempty"`
}

// Recommendation is one scored gift idea.
type Recommendation struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"` // brand | place
	Category       string          `json:"category,omitempty"`
	AffinityScore  float64         `json:"affinityScore"`
	Popularity     float64         `json:"popularity,omitempty"`
	Location       *taste.GeoPoint `json:"location,omitempty"`
	Explainability json.RawMessage `json:"explainability,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// RecipientSummary identifies who the recommendations are for.
type RecipientSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// RecommendationContext echoes the signals that produced the result.
type RecommendationContext struct {
	Occasion     string             `json:"occasion,omitempty"`
	OccasionTags []string           `json:"occasionTags,omitempty"`
	Interests    []string           `json:"interests,omitempty"`
	PriceRange   *models.PriceRange `json:"priceRange,omitempty"`
	Demographics struct {
		AgeGroup string `json:"ageGroup,omitempty"`
		Gender   string `json:"gender"`
		Location string `json:"location,omitempty"`
	} `json:"demographics"`
}

// RecommendationResult is the recommendations payload.
type RecommendationResult struct {
	Recipient       *RecipientSummary      `json:"recipient"`
	Recommendations []*Recommendation      `json:"recommendations"`
	Context         *RecommendationContext `json:"context"`
}

// maxRecommendations caps the merged recommendation list.
const maxRecommendations = 15

// RecommendationService turns a recipient's demographics into scored gift
// ideas via the recommendation provider.
type RecommendationService struct {
	directory directory.Directory
	taste     taste.Client
	logger    *zap.Logger
}

// NewRecommendationService creates a recommendation service.
func NewRecommendationService(dir directory.Directory, tasteClient taste.Client, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		directory: dir,
		taste:     tasteClient,
		logger:    logger.Named("recommendations"),
	}
}

// Recommend looks up the recipient, queries brand and place insights
// independently, and merges them sorted by affinity. Provider failure is
// tolerated: the result carries whatever could be fetched, possibly
// nothing.
func (s *RecommendationService) Recommend(ctx context.Context, req *RecommendationRequest) (*RecommendationResult, error) {
	recipient, err := s.directory.GetEmployee(ctx, req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("load recipient %s: %w", req.RecipientID, err)
	}
	if recipient == nil {
		return nil, apperrors.ErrNotFound
	}

	ageGroup := ageRangeToGroup(recipient.AgeRange)
	queryAge := ageGroup
	if queryAge == "" {
		queryAge = taste.AgeYoungAdult
	}
	gender := normalizeGender(recipient.GenderIdentity)
	locationWKT := locationToWKT(recipient.Location)

	brands := s.insightsOrEmpty(ctx, &taste.InsightsQuery{
		EntityType:      taste.EntityBrand,
		Age:             queryAge,
		Gender:          gender,
		LocationWKT:     locationWKT,
		PopularityFloor: 0.1,
		TrendsBias:      "high",
		Take:            20,
		Explainability:  true,
	})
	places := s.insightsOrEmpty(ctx, &taste.InsightsQuery{
		EntityType:      taste.EntityPlace,
		Age:             queryAge,
		Gender:          gender,
		LocationWKT:     locationWKT,
		PopularityFloor: 0.05,
		Take:            10,
		Explainability:  true,
	})

	recommendations := make([]*Recommendation, 0, len(brands)+len(places))
	for _, brand := range brands {
		metadata := map[string]any{
			"suggestedGifts": suggestedGiftsForBrand(brand.Name, req.Occasion),
		}
		for k, v := range brand.Metadata {
			metadata[k] = v
		}
		recommendations = append(recommendations, &Recommendation{
			ID:             brand.ID,
			Name:           brand.Name,
			Type:           "brand",
			Category:       brand.Category,
			AffinityScore:  brand.Affinity,
			Popularity:     brand.Popularity,
			Explainability: brand.Explainability,
			Metadata:       metadata,
		})
	}
	for _, place := range places {
		recommendations = append(recommendations, &Recommendation{
			ID:             place.ID,
			Name:           place.Name,
			Type:           "place",
			Category:       place.Category,
			AffinityScore:  place.Affinity,
			Popularity:     place.Popularity,
			Location:       place.Geo,
			Explainability: place.Explainability,
			Metadata:       place.Metadata,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].AffinityScore > recommendations[j].AffinityScore
	})
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	result := &RecommendationResult{
		Recipient: &RecipientSummary{
			ID:         recipient.ID,
			Name:       recipient.Name,
			Department: recipient.Department,
			Role:       recipient.Role,
		},
		Recommendations: recommendations,
		Context: &RecommendationContext{
			Occasion:     req.Occasion,
			OccasionTags: occasionTags(req.Occasion),
			Interests:    req.Interests,
			PriceRange:   req.PriceRange,
		},
	}
	result.Context.Demographics.AgeGroup = ageGroup
	result.Context.Demographics.Gender = gender
	result.Context.Demographics.Location = recipient.Location

	return result, nil
}

// insightsOrEmpty runs one provider query and degrades to an empty result
// on failure.
func (s *RecommendationService) insightsOrEmpty(ctx context.Context, query *taste.InsightsQuery) []*taste.ScoredEntity {
	entities, err := s.taste.GetInsights(ctx, query)
	if err != nil {
		s.logger.Warn("Insights query failed, continuing without results",
			zap.String("entity_type", query.EntityType),
			zap.Error(err))
		return nil
	}
	return entities
}
