package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/directory"
	"github.com/onbloom-hq/onbloom-engine/pkg/apperrors"
	"github.com/onbloom-hq/onbloom-engine/pkg/jsonutil"
	"github.com/onbloom-hq/onbloom-engine/pkg/llm"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// newHireTag marks directory profiles still in onboarding.
const newHireTag = "New Hire"

// FindDirectConnections enumerates rule-based connections between the new
// hire and every other employee. Pure and deterministic apart from the
// recent-hire window, which is evaluated against the current time. The
// result preserves the input order; employees with no matching rule are
// excluded, as is the new hire itself.
func FindDirectConnections(newEmployee *models.EmployeeProfile, allEmployees []*models.EmployeeProfile) []*models.EmployeeRelationship {
	return findDirectConnectionsAt(newEmployee, allEmployees, time.Now())
}

func findDirectConnectionsAt(newEmployee *models.EmployeeProfile, allEmployees []*models.EmployeeProfile, now time.Time) []*models.EmployeeRelationship {
	connections := make([]*models.EmployeeRelationship, 0, len(allEmployees))

	for _, employee := range allEmployees {
		if employee.ID == newEmployee.ID {
			continue
		}

		var types []models.ConnectionType
		var insights []string

		if employee.HasTag(newHireTag) && employee.Department == newEmployee.Department {
			types = append(types, models.ConnectionSameTeam)
			insights = append(insights, fmt.Sprintf("Both in %s team", employee.Department))
		}

		if employee.Department == newEmployee.Department {
			types = append(types, models.ConnectionSameDepartment)
		}

		if employee.Location == newEmployee.Location {
			types = append(types, models.ConnectionSameLocation)
			insights = append(insights, fmt.Sprintf("Both based in %s", employee.Location))
		}

		if employee.Role == newEmployee.Role {
			types = append(types, models.ConnectionSameRole)
			insights = append(insights, fmt.Sprintf("Both are %ss", employee.Role))
		}

		if shared := sharedHeritage(employee.CulturalHeritage, newEmployee.CulturalHeritage); len(shared) > 0 {
			types = append(types, models.ConnectionCulturalHeritage)
			insights = append(insights, "Shared cultural heritage: "+strings.Join(shared, ", "))
		}

		if employee.TimeZone == newEmployee.TimeZone {
			types = append(types, models.ConnectionTimezoneOverlap)
		}

		if isRecentHire(employee.StartDate, now) {
			types = append(types, models.ConnectionRecentHire)
			insights = append(insights, "Recently joined the company")
		}

		if len(types) > 0 {
			connections = append(connections, &models.EmployeeRelationship{
				EmployeeID:         employee.ID,
				EmployeeName:       employee.Name,
				ConnectionTypes:    types,
				ActionableInsights: insights,
			})
		}
	}

	return connections
}

func sharedHeritage(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(b))
	for _, h := range b {
		set[h] = struct{}{}
	}
	var shared []string
	for _, h := range a {
		if _, ok := set[h]; ok {
			shared = append(shared, h)
		}
	}
	return shared
}

// isRecentHire reports whether the start date falls within the 3 calendar
// months preceding now. Unparseable dates never match.
func isRecentHire(startDate string, now time.Time) bool {
	if startDate == "" {
		return false
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return false
	}
	return start.After(now.AddDate(0, -3, 0))
}

// RelationshipService analyzes a new hire's connections to the existing
// employee population.
type RelationshipService struct {
	directory directory.Directory
	generator llm.GenerationClient
	thinker   llm.ThinkingStreamer
	logger    *zap.Logger
}

// NewRelationshipService creates a relationship service.
func NewRelationshipService(dir directory.Directory, generator llm.GenerationClient, thinker llm.ThinkingStreamer, logger *zap.Logger) *RelationshipService {
	return &RelationshipService{
		directory: dir,
		generator: generator,
		thinker:   thinker,
		logger:    logger.Named("relationships"),
	}
}

// generatedAnalysis is the shape requested from the generation provider.
// EmployeeID is raw because models sometimes return it as a number.
type generatedAnalysis struct {
	Relationships []struct {
		EmployeeID         json.RawMessage         `json:"employeeId"`
		EmployeeName       string                  `json:"employeeName"`
		ConnectionTypes    []models.ConnectionType `json:"connectionTypes"`
		RelevanceScore     float64                 `json:"relevanceScore"`
		Reasoning          string                  `json:"reasoning"`
		ActionableInsights []string                `json:"actionableInsights"`
	} `json:"relationships"`
	KeyInsights               []string `json:"keyInsights"`
	OnboardingRecommendations []string `json:"onboardingRecommendations"`
}

// Analyze computes rule-based direct connections, then asks the generation
// provider to enrich them into scored relationships. Generation failure is
// not an error: the result falls back to the direct connections and is
// tagged with its source so callers can tell the paths apart.
func (s *RelationshipService) Analyze(ctx context.Context, employeeID string) (*models.RelationshipAnalysis, error) {
	employee, allEmployees, err := s.loadPopulation(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	direct := FindDirectConnections(employee, allEmployees)
	prompt := analysisPrompt(employee, allEmployees, direct)

	response, err := s.generator.GenerateText(ctx, prompt, analysisSystemMessage, 0.7)
	if err != nil {
		s.logger.Warn("Relationship generation failed, using direct connections",
			zap.String("employee_id", employeeID),
			zap.Error(err))
		return s.fallbackAnalysis(employee, direct), nil
	}

	parsed, err := llm.ParseJSONResponse[generatedAnalysis](response)
	if err != nil {
		s.logger.Warn("Relationship response unparseable, using direct connections",
			zap.String("employee_id", employeeID),
			zap.Error(err))
		return s.fallbackAnalysis(employee, direct), nil
	}

	relationships := make([]*models.EmployeeRelationship, 0, len(parsed.Relationships))
	for _, rel := range parsed.Relationships {
		relationships = append(relationships, &models.EmployeeRelationship{
			EmployeeID:         jsonutil.FlexibleStringValue(rel.EmployeeID),
			EmployeeName:       rel.EmployeeName,
			ConnectionTypes:    models.FilterConnectionTypes(rel.ConnectionTypes),
			RelevanceScore:     clampScore(rel.RelevanceScore),
			Reasoning:          rel.Reasoning,
			ActionableInsights: rel.ActionableInsights,
		})
	}

	return &models.RelationshipAnalysis{
		NewEmployeeID:             employee.ID,
		Relationships:             relationships,
		KeyInsights:               parsed.KeyInsights,
		OnboardingRecommendations: parsed.OnboardingRecommendations,
		Source:                    models.AnalysisSourceGenerated,
	}, nil
}

// StreamAnalysis streams free-text reasoning about the employee's
// relationships, with the full roster in the prompt.
func (s *RelationshipService) StreamAnalysis(ctx context.Context, employeeID string, chunks chan<- string) error {
	employee, allEmployees, err := s.loadPopulation(ctx, employeeID)
	if err != nil {
		return err
	}

	prompt := streamAnalysisPrompt(employee, allEmployees)
	return s.thinker.StreamThinking(ctx, prompt, chunks)
}

// StreamWithConnections streams reasoning seeded with the rule-based direct
// connections rather than the full roster.
func (s *RelationshipService) StreamWithConnections(ctx context.Context, employeeID string, chunks chan<- string) error {
	employee, allEmployees, err := s.loadPopulation(ctx, employeeID)
	if err != nil {
		return err
	}

	direct := FindDirectConnections(employee, allEmployees)
	prompt := streamConnectionsPrompt(employee, len(allEmployees)-1, direct)
	return s.thinker.StreamThinking(ctx, prompt, chunks)
}

func (s *RelationshipService) loadPopulation(ctx context.Context, employeeID string) (*models.EmployeeProfile, []*models.EmployeeProfile, error) {
	employee, err := s.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, nil, fmt.Errorf("load employee %s: %w", employeeID, err)
	}
	if employee == nil {
		return nil, nil, apperrors.ErrNotFound
	}

	allEmployees, err := s.directory.ListEmployees(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load employee population: %w", err)
	}
	return employee, allEmployees, nil
}

func (s *RelationshipService) fallbackAnalysis(employee *models.EmployeeProfile, direct []*models.EmployeeRelationship) *models.RelationshipAnalysis {
	relationships := make([]*models.EmployeeRelationship, 0, len(direct))
	for _, conn := range direct {
		typeNames := make([]string, len(conn.ConnectionTypes))
		for i, t := range conn.ConnectionTypes {
			typeNames[i] = string(t)
		}
		relationships = append(relationships, &models.EmployeeRelationship{
			EmployeeID:         conn.EmployeeID,
			EmployeeName:       conn.EmployeeName,
			ConnectionTypes:    conn.ConnectionTypes,
			RelevanceScore:     float64(len(conn.ConnectionTypes) * 20),
			Reasoning:          "Direct connection based on: " + strings.Join(typeNames, ", "),
			ActionableInsights: conn.ActionableInsights,
		})
	}

	return &models.RelationshipAnalysis{
		NewEmployeeID: employee.ID,
		Relationships: relationships,
		KeyInsights: []string{
			fmt.Sprintf("%s is joining the %s department as a %s", employee.Name, employee.Department, employee.Role),
			fmt.Sprintf("Located in %s with %d direct connections identified", employee.Location, len(direct)),
		},
		OnboardingRecommendations: []string{
			"Schedule meet-and-greets with team members in the same department",
			"Connect with other recent hires for shared onboarding experiences",
			"Facilitate introductions with employees sharing cultural background",
		},
		Source: models.AnalysisSourceFallback,
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

const analysisSystemMessage = "You are an HR specialist analyzing employee relationships for onboarding purposes."

func analysisPrompt(employee *models.EmployeeProfile, allEmployees []*models.EmployeeProfile, direct []*models.EmployeeRelationship) string {
	var b strings.Builder

	b.WriteString("New Employee:\n")
	b.WriteString(profileJSON(employee))
	b.WriteString("\n\nExisting Employees:\n")
	b.WriteString(rosterJSON(employee.ID, allEmployees))
	b.WriteString("\n\nDirect Connections Found:\n")
	b.WriteString(connectionsJSON(direct))

	b.WriteString(`

Analyze the relationships between the new employee and existing employees. Consider:
1. Professional connections (mentorship opportunities, cross-functional collaboration)
2. Cultural and social connections (shared backgrounds, interests)
3. Practical connections (timezone, location, recent hires who can share experience)

For each relationship, provide:
- Clear reasoning why this connection is valuable
- Actionable insights for facilitating the connection
- A relevance score (0-100) based on potential impact on successful onboarding

Respond with a valid JSON object with this exact structure:
{
  "relationships": [
    {
      "employeeId": "string",
      "employeeName": "string",
      "connectionTypes": ["same_team" | "same_department" | "same_location" | "same_role" | "cultural_heritage" | "shared_interests" | "language_match" | "potential_mentor" | "recent_hire" | "cross_functional" | "timezone_overlap" | "executive_peer" | "leadership_mentor" | "peer_level"],
      "relevanceScore": 0-100,
      "reasoning": "string",
      "actionableInsights": ["string"]
    }
  ],
  "keyInsights": ["string"],
  "onboardingRecommendations": ["string"]
}

CRITICAL: Only use the exact connectionTypes listed above. Do not create new types.`)

	return b.String()
}

func streamAnalysisPrompt(employee *models.EmployeeProfile, allEmployees []*models.EmployeeProfile) string {
	var b strings.Builder

	b.WriteString("You are an HR specialist analyzing employee relationships for onboarding purposes. Think through this step by step.\n\n")
	b.WriteString("New Employee:\n")
	b.WriteString(profileJSON(employee))
	b.WriteString("\n\nExisting Employees:\n")
	b.WriteString(rosterJSON(employee.ID, allEmployees))

	b.WriteString(`

Think through the following:
1. What are the direct connections (same team, department, location)?
2. What cultural or social connections exist?
3. Who would be good mentors or guides?
4. What cross-functional relationships would be valuable?
5. Who are recent hires that could share their experience?

For each potential connection, explain your reasoning clearly.

After your analysis, provide a structured response with:
- Top recommended connections with relevance scores
- Key insights about the employee's potential network
- Specific onboarding recommendations`)

	return b.String()
}

func streamConnectionsPrompt(employee *models.EmployeeProfile, population int, direct []*models.EmployeeRelationship) string {
	var b strings.Builder

	b.WriteString("You are an HR specialist analyzing employee relationships for onboarding purposes.\n\n")
	fmt.Fprintf(&b, "New Employee:\nName: %s\nRole: %s\nDepartment: %s\nLocation: %s\n",
		employee.Name, employee.Role, employee.Department, employee.Location)
	fmt.Fprintf(&b, "Cultural Heritage: %s\n", orNotSpecified(strings.Join(employee.CulturalHeritage, ", ")))
	fmt.Fprintf(&b, "Age Range: %s\n", orNotSpecified(employee.AgeRange))
	fmt.Fprintf(&b, "Start Date: %s\n\n", employee.StartDate)
	fmt.Fprintf(&b, "Total Employees in Organization: %d\n\n", population)

	b.WriteString("Direct Connections Found:\n")
	for _, conn := range direct {
		typeNames := make([]string, len(conn.ConnectionTypes))
		for i, t := range conn.ConnectionTypes {
			typeNames[i] = string(t)
		}
		fmt.Fprintf(&b, "- %s (%s)\n", conn.EmployeeName, strings.Join(typeNames, ", "))
	}

	b.WriteString(`
Think through this step by step:

1. First, analyze the direct connections - what patterns do you see?
2. Consider cultural and social connections - who shares similar backgrounds?
3. Think about professional development - who could be good mentors or guides?
4. Consider cross-functional relationships - which departments should they connect with?
5. Look for recent hires who could share their onboarding experience
6. Think about timezone and location practicalities

For each potential connection, explain your reasoning clearly.

After your analysis, summarize:
- The top 5-10 most valuable connections with clear reasoning
- Key insights about their potential network
- Specific recommendations for the onboarding process

Think out loud about your reasoning process.`)

	return b.String()
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func profileJSON(employee *models.EmployeeProfile) string {
	data, _ := json.MarshalIndent(map[string]any{
		"name":             employee.Name,
		"role":             employee.Role,
		"department":       employee.Department,
		"location":         employee.Location,
		"culturalHeritage": employee.CulturalHeritage,
		"ageRange":         employee.AgeRange,
		"startDate":        employee.StartDate,
	}, "", "  ")
	return string(data)
}

func rosterJSON(excludeID string, allEmployees []*models.EmployeeProfile) string {
	roster := make([]map[string]any, 0, len(allEmployees))
	for _, e := range allEmployees {
		if e.ID == excludeID {
			continue
		}
		roster = append(roster, map[string]any{
			"id":               e.ID,
			"name":             e.Name,
			"role":             e.Role,
			"department":       e.Department,
			"location":         e.Location,
			"culturalHeritage": e.CulturalHeritage,
			"ageRange":         e.AgeRange,
			"startDate":        e.StartDate,
			"timeZone":         e.TimeZone,
		})
	}
	data, _ := json.MarshalIndent(roster, "", "  ")
	return string(data)
}

func connectionsJSON(direct []*models.EmployeeRelationship) string {
	data, _ := json.MarshalIndent(direct, "", "  ")
	return string(data)
}
