package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/apperrors"
	"github.com/onbloom-hq/onbloom-engine/pkg/llm"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

var connectionTestNow = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func newHireProfile() *models.EmployeeProfile {
	return &models.EmployeeProfile{
		ID:               "new-1",
		Name:             "Priya Patel",
		Department:       "Engineering",
		Role:             "Software Engineer",
		Location:         "Austin",
		TimeZone:         "CST",
		CulturalHeritage: []string{"Indian"},
		StartDate:        "2026-06-10",
		Tags:             []string{"New Hire"},
	}
}

func TestFindDirectConnections_SameTeamRequiresNewHireTag(t *testing.T) {
	newEmployee := newHireProfile()

	teammate := &models.EmployeeProfile{
		ID:         "e1",
		Name:       "Jordan Lee",
		Department: "Engineering",
		Tags:       []string{"New Hire"},
	}
	veteran := &models.EmployeeProfile{
		ID:         "e2",
		Name:       "Casey Kim",
		Department: "Engineering",
	}

	conns := findDirectConnectionsAt(newEmployee, []*models.EmployeeProfile{teammate, veteran}, connectionTestNow)
	require.Len(t, conns, 2)

	assert.Contains(t, conns[0].ConnectionTypes, models.ConnectionSameTeam)
	assert.Contains(t, conns[0].ConnectionTypes, models.ConnectionSameDepartment)
	assert.Contains(t, conns[0].ActionableInsights, "Both in Engineering team")

	assert.NotContains(t, conns[1].ConnectionTypes, models.ConnectionSameTeam)
	assert.Contains(t, conns[1].ConnectionTypes, models.ConnectionSameDepartment)
}

func TestFindDirectConnections_ExcludesSelfAndZeroMatches(t *testing.T) {
	newEmployee := newHireProfile()

	stranger := &models.EmployeeProfile{
		ID:         "e1",
		Name:       "Robin Park",
		Department: "Sales",
		Role:       "Account Executive",
		Location:   "Miami",
		TimeZone:   "EST",
		StartDate:  "2020-01-01",
	}

	conns := findDirectConnectionsAt(newEmployee, []*models.EmployeeProfile{newEmployee, stranger}, connectionTestNow)
	assert.Empty(t, conns)
}

func TestFindDirectConnections_CulturalHeritageIntersection(t *testing.T) {
	newEmployee := newHireProfile()
	newEmployee.CulturalHeritage = []string{"Indian", "British"}

	match := &models.EmployeeProfile{
		ID:               "e1",
		Name:             "Asha Rao",
		Department:       "Sales",
		CulturalHeritage: []string{"Indian"},
	}
	disjoint := &models.EmployeeProfile{
		ID:               "e2",
		Name:             "Sam Ortiz",
		Department:       "Sales",
		CulturalHeritage: []string{"Mexican"},
	}

	conns := findDirectConnectionsAt(newEmployee, []*models.EmployeeProfile{match, disjoint}, connectionTestNow)
	require.Len(t, conns, 1)
	assert.Equal(t, "e1", conns[0].EmployeeID)
	assert.Contains(t, conns[0].ConnectionTypes, models.ConnectionCulturalHeritage)
	assert.Contains(t, conns[0].ActionableInsights, "Shared cultural heritage: Indian")
}

func TestFindDirectConnections_RecentHireWindow(t *testing.T) {
	newEmployee := newHireProfile()
	newEmployee.Department = "Engineering"

	inside := &models.EmployeeProfile{
		ID:        "e1",
		Name:      "Recent",
		StartDate: connectionTestNow.AddDate(0, -2, 0).Format("2006-01-02"),
	}
	outside := &models.EmployeeProfile{
		ID:        "e2",
		Name:      "Veteran",
		StartDate: connectionTestNow.AddDate(0, -4, 0).Format("2006-01-02"),
	}
	unparseable := &models.EmployeeProfile{
		ID:        "e3",
		Name:      "Unknown",
		StartDate: "soon",
	}

	conns := findDirectConnectionsAt(newEmployee, []*models.EmployeeProfile{inside, outside, unparseable}, connectionTestNow)
	require.Len(t, conns, 1)
	assert.Equal(t, "e1", conns[0].EmployeeID)
	assert.Equal(t, []models.ConnectionType{models.ConnectionRecentHire}, conns[0].ConnectionTypes)
	assert.Contains(t, conns[0].ActionableInsights, "Recently joined the company")
}

func TestFindDirectConnections_PreservesRosterOrder(t *testing.T) {
	newEmployee := newHireProfile()

	roster := []*models.EmployeeProfile{
		{ID: "b", Name: "B", Location: "Austin"},
		{ID: "a", Name: "A", Location: "Austin"},
		{ID: "c", Name: "C", Location: "Austin"},
	}

	conns := findDirectConnectionsAt(newEmployee, roster, connectionTestNow)
	require.Len(t, conns, 3)
	assert.Equal(t, "b", conns[0].EmployeeID)
	assert.Equal(t, "a", conns[1].EmployeeID)
	assert.Equal(t, "c", conns[2].EmployeeID)
}

func relationshipFixtureDirectory() *mockDirectory {
	newEmployee := newHireProfile()
	colleague := &models.EmployeeProfile{
		ID:         "e1",
		Name:       "Jordan Lee",
		Department: "Engineering",
		Role:       "Software Engineer",
	}
	return &mockDirectory{
		GetEmployeeFunc: func(ctx context.Context, id string) (*models.EmployeeProfile, error) {
			if id == newEmployee.ID {
				return newEmployee, nil
			}
			return nil, nil
		},
		ListEmployeesFunc: func(ctx context.Context) ([]*models.EmployeeProfile, error) {
			return []*models.EmployeeProfile{newEmployee, colleague}, nil
		},
	}
}

func TestAnalyze_GeneratedPath(t *testing.T) {
	generator := llm.NewMockGenerationClient()
	generator.GenerateTextFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return `{
			"relationships": [
				{
					"employeeId": 42,
					"employeeName": "Jordan Lee",
					"connectionTypes": ["same_department", "bogus_type", "potential_mentor"],
					"relevanceScore": 130,
					"reasoning": "Same department.",
					"actionableInsights": ["Pair on the first project"]
				}
			],
			"keyInsights": ["Strong engineering overlap"],
			"onboardingRecommendations": ["Weekly 1:1 with Jordan"]
		}`, nil
	}

	svc := NewRelationshipService(relationshipFixtureDirectory(), generator, &mockThinkingStreamer{}, zap.NewNop())

	analysis, err := svc.Analyze(context.Background(), "new-1")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisSourceGenerated, analysis.Source)
	assert.Equal(t, "new-1", analysis.NewEmployeeID)
	require.Len(t, analysis.Relationships, 1)

	rel := analysis.Relationships[0]
	assert.Equal(t, "42", rel.EmployeeID)
	assert.Equal(t, []models.ConnectionType{models.ConnectionSameDepartment, models.ConnectionPotentialMentor}, rel.ConnectionTypes)
	assert.Equal(t, 100.0, rel.RelevanceScore)
	assert.Equal(t, []string{"Strong engineering overlap"}, analysis.KeyInsights)
}

func TestAnalyze_FallbackOnGenerationFailure(t *testing.T) {
	generator := llm.NewMockGenerationClient()
	generator.GenerateTextFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "", errors.New("provider unavailable")
	}

	svc := NewRelationshipService(relationshipFixtureDirectory(), generator, &mockThinkingStreamer{}, zap.NewNop())

	analysis, err := svc.Analyze(context.Background(), "new-1")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisSourceFallback, analysis.Source)
	require.Len(t, analysis.Relationships, 1)

	rel := analysis.Relationships[0]
	assert.Equal(t, "e1", rel.EmployeeID)
	assert.Equal(t, float64(len(rel.ConnectionTypes)*20), rel.RelevanceScore)
	assert.NotEmpty(t, analysis.KeyInsights)
	assert.NotEmpty(t, analysis.OnboardingRecommendations)
}

func TestAnalyze_FallbackOnUnparseableResponse(t *testing.T) {
	generator := llm.NewMockGenerationClient()
	generator.GenerateTextFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "I could not produce JSON today.", nil
	}

	svc := NewRelationshipService(relationshipFixtureDirectory(), generator, &mockThinkingStreamer{}, zap.NewNop())

	analysis, err := svc.Analyze(context.Background(), "new-1")
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisSourceFallback, analysis.Source)
}

func TestAnalyze_UnknownEmployee(t *testing.T) {
	svc := NewRelationshipService(relationshipFixtureDirectory(), llm.NewMockGenerationClient(), &mockThinkingStreamer{}, zap.NewNop())

	_, err := svc.Analyze(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStreamWithConnections_PromptSeedsDirectConnections(t *testing.T) {
	thinker := &mockThinkingStreamer{Chunks: []string{"thinking..."}}
	svc := NewRelationshipService(relationshipFixtureDirectory(), llm.NewMockGenerationClient(), thinker, zap.NewNop())

	chunks := make(chan string, 10)
	err := svc.StreamWithConnections(context.Background(), "new-1", chunks)
	require.NoError(t, err)

	assert.Contains(t, thinker.Prompt, "Direct Connections Found:")
	assert.Contains(t, thinker.Prompt, "Jordan Lee")
	assert.Contains(t, thinker.Prompt, "Total Employees in Organization: 1")
	assert.Equal(t, "thinking...", <-chunks)
}
