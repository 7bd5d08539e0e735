package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/directory"
	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/taste"
	"github.com/onbloom-hq/onbloom-engine/pkg/llm"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// occasionKeywords are matched case-insensitively against the whole
// conversation to detect what the gift is for.
var occasionKeywords = []string{
	"anniversary",
	"birthday",
	"retirement",
	"promotion",
	"farewell",
	"welcome",
	"holiday",
	"christmas",
	"new year",
	"team celebration",
	"milestone",
}

// interestKeywords map conversation mentions to an interest category. The
// first alternative names the category.
var interestKeywords = []string{
	"tech|technology|gadget",
	"book|reading|literature",
	"food|gourmet|cooking",
	"fitness|health|wellness",
	"travel|adventure",
	"music|audio",
	"art|creative",
	"coffee|tea",
	"wine|spirits",
	"fashion|style",
}

// pricePattern matches "$50" or "$50-$100" style budget mentions.
var pricePattern = regexp.MustCompile(`\$(\d+)(?:\s*-\s*\$?(\d+))?`)

// ChatMessage is one prior turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// ChatRequest is a gift-advice conversation turn.
type ChatRequest struct {
	Message            string            `json:"message"`
	MentionedEmployees []models.Identity `json:"mentionedEmployees"`
	PreviousMessages   []ChatMessage     `json:"previousMessages,omitempty"`
}

// GiftContext is what the conversation reveals about the gift being
// sought.
type GiftContext struct {
	Occasions  []string           `json:"occasions"`
	PriceRange *models.PriceRange `json:"priceRange,omitempty"`
	Interests  []string           `json:"interests"`
}

// ChatRecommendation is a trimmed provider suggestion surfaced to the
// client alongside the reply.
type ChatRecommendation struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category,omitempty"`
	Affinity       float64 `json:"affinity"`
	Explainability any     `json:"explainability,omitempty"`
}

// ChatResult is the assistant reply plus the context it was grounded in.
type ChatResult struct {
	Content string `json:"content"`
	Context struct {
		MentionedEmployees []*models.EmployeeProfile `json:"mentionedEmployees"`
		GiftContext        *GiftContext              `json:"giftContext"`
		Recommendations    []*ChatRecommendation     `json:"recommendations,omitempty"`
	} `json:"context"`
}

// ExtractGiftContext scans the conversation for occasion, budget, and
// interest mentions.
func ExtractGiftContext(message string, previous []ChatMessage) *GiftContext {
	parts := make([]string, 0, len(previous)+1)
	for _, m := range previous {
		parts = append(parts, m.Content)
	}
	parts = append(parts, message)
	conversation := strings.ToLower(strings.Join(parts, " "))

	ctx := &GiftContext{
		Occasions: []string{},
		Interests: []string{},
	}

	for _, keyword := range occasionKeywords {
		if strings.Contains(conversation, keyword) {
			ctx.Occasions = append(ctx.Occasions, keyword)
		}
	}

	if match := pricePattern.FindStringSubmatch(conversation); match != nil {
		min, _ := strconv.ParseFloat(match[1], 64)
		max := min * 2
		if match[2] != "" {
			max, _ = strconv.ParseFloat(match[2], 64)
		}
		ctx.PriceRange = &models.PriceRange{Min: min, Max: max}
	}

	for _, alternatives := range interestKeywords {
		words := strings.Split(alternatives, "|")
		for _, word := range words {
			if strings.Contains(conversation, word) {
				ctx.Interests = append(ctx.Interests, words[0])
				break
			}
		}
	}

	return ctx
}

// ChatService answers gift-advice conversations grounded in mentioned
// employees' profiles and provider recommendations.
type ChatService struct {
	directory directory.Directory
	taste     taste.Client
	generator llm.GenerationClient
	logger    *zap.Logger
}

// NewChatService creates a chat service.
func NewChatService(dir directory.Directory, tasteClient taste.Client, generator llm.GenerationClient, logger *zap.Logger) *ChatService {
	return &ChatService{
		directory: dir,
		taste:     tasteClient,
		generator: generator,
		logger:    logger.Named("chat"),
	}
}

// Chat runs one conversation turn. Profile lookups fan out concurrently;
// failures for individual employees are tolerated and logged. Provider
// recommendation failure degrades to a reply without them.
func (s *ChatService) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	profiles := s.lookupProfiles(ctx, req.MentionedEmployees)
	giftContext := ExtractGiftContext(req.Message, req.PreviousMessages)
	recommendations := s.recommendationsFor(ctx, profiles)

	systemPrompt := chatSystemPrompt(profiles, giftContext, recommendations)
	userPrompt := chatUserPrompt(req.Message, req.PreviousMessages)

	content, err := s.generator.GenerateText(ctx, userPrompt, systemPrompt, 0.7)
	if err != nil {
		return nil, fmt.Errorf("generate chat reply: %w", err)
	}

	result := &ChatResult{Content: content}
	result.Context.MentionedEmployees = profiles
	result.Context.GiftContext = giftContext
	result.Context.Recommendations = recommendations
	return result, nil
}

// lookupProfiles fetches mentioned employees concurrently, preserving
// mention order and dropping failures.
func (s *ChatService) lookupProfiles(ctx context.Context, mentioned []models.Identity) []*models.EmployeeProfile {
	// Each goroutine writes its own slot, so no locking is needed.
	slots := make([]*models.EmployeeProfile, len(mentioned))

	g, gctx := errgroup.WithContext(ctx)
	for i, emp := range mentioned {
		g.Go(func() error {
			profile, err := s.directory.GetEmployee(gctx, emp.ID)
			if err != nil {
				s.logger.Warn("Failed to fetch mentioned employee",
					zap.String("employee_id", emp.ID),
					zap.Error(err))
				return nil
			}
			slots[i] = profile
			return nil
		})
	}
	_ = g.Wait()

	profiles := make([]*models.EmployeeProfile, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// recommendationsFor queries brand insights for the first mentioned
// employee's demographics, returning at most five.
func (s *ChatService) recommendationsFor(ctx context.Context, profiles []*models.EmployeeProfile) []*ChatRecommendation {
	if len(profiles) == 0 {
		return nil
	}

	target := profiles[0]
	age := ageRangeToGroup(target.AgeRange)
	if age == "" {
		age = taste.AgeYoungAdult
	}

	entities, err := s.taste.GetInsights(ctx, &taste.InsightsQuery{
		EntityType:      taste.EntityBrand,
		Age:             age,
		Gender:          normalizeGender(target.GenderIdentity),
		LocationWKT:     locationToWKT(target.Location),
		PopularityFloor: 0.1,
		TrendsBias:      "medium",
		Take:            10,
		Explainability:  true,
	})
	if err != nil {
		s.logger.Warn("Chat insights query failed, continuing without recommendations",
			zap.Error(err))
		return nil
	}

	if len(entities) > 5 {
		entities = entities[:5]
	}
	recs := make([]*ChatRecommendation, 0, len(entities))
	for _, e := range entities {
		recs = append(recs, &ChatRecommendation{
			ID:             e.ID,
			Name:           e.Name,
			Category:       e.Category,
			Affinity:       e.Affinity,
			Explainability: e.Explainability,
		})
	}
	return recs
}

func chatSystemPrompt(profiles []*models.EmployeeProfile, giftContext *GiftContext, recommendations []*ChatRecommendation) string {
	var b strings.Builder

	b.WriteString(`You are a helpful gift recommendation assistant for a corporate gifting platform.
You help employees find thoughtful, appropriate gifts for their colleagues.
Focus on professional, tasteful gift suggestions that are appropriate for a workplace setting.
Consider the recipient's role, department, interests, and any mentioned occasions.`)

	if len(profiles) > 0 {
		b.WriteString("\n\nEmployee Information:")
		for _, p := range profiles {
			fmt.Fprintf(&b, "\n\nEmployee: %s\n- Department: %s\n- Role: %s\n- Location: %s\n- Start Date: %s",
				p.Name, p.Department, p.Role, p.Location, p.StartDate)
			if p.AgeRange != "" {
				fmt.Fprintf(&b, "\n- Age Range: %s", p.AgeRange)
			}
			if len(p.CulturalHeritage) > 0 {
				fmt.Fprintf(&b, "\n- Cultural Background: %s", strings.Join(p.CulturalHeritage, ", "))
			}
		}
	}

	if len(giftContext.Occasions) > 0 {
		fmt.Fprintf(&b, "\n\nOccasion: %s", strings.Join(giftContext.Occasions, ", "))
	}
	if giftContext.PriceRange != nil {
		fmt.Fprintf(&b, "\nBudget: $%.0f - $%.0f", giftContext.PriceRange.Min, giftContext.PriceRange.Max)
	}
	if len(giftContext.Interests) > 0 {
		fmt.Fprintf(&b, "\nInterests mentioned: %s", strings.Join(giftContext.Interests, ", "))
	}

	if len(recommendations) > 0 {
		b.WriteString("\n\nBased on cultural intelligence data, here are some personalized brand recommendations:")
		for _, r := range recommendations {
			fmt.Fprintf(&b, "\n- %s (Affinity Score: %.2f)", r.Name, r.Affinity)
		}
	}

	b.WriteString("\n\nProvide specific gift suggestions with reasoning. Be conversational and helpful.")
	return b.String()
}

func chatUserPrompt(message string, previous []ChatMessage) string {
	if len(previous) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, m := range previous {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "\nUser: %s", message)
	return b.String()
}
