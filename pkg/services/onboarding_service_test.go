package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/llm"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

func onboardingEmployee() *models.OnboardingEmployee {
	return &models.OnboardingEmployee{
		Name:       "Priya Patel",
		Role:       "Software Engineer",
		Department: "Engineering",
		StartDate:  "2026-09-01",
	}
}

func TestGenerateFlow_GeneratedPath(t *testing.T) {
	generator := llm.NewMockGenerationClient()
	generator.GenerateTextFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return `{
			"people": [{"id": "p1", "name": "Dana Wu", "role": "Manager", "department": "Engineering", "email": "dana@company.com", "connectionType": "direct"}],
			"processes": [{"id": "pr1", "title": "Deploy Guide", "description": "How we ship", "source": "notion", "url": "https://notion.so/deploy", "category": "Team Guidelines"}],
			"training": [{"id": "t1", "title": "Intro to the Stack", "description": "Architecture tour", "videoUrl": "https://youtube.com/watch?v=x", "duration": "25 min", "source": "internal"}],
			"access": [{"id": "a1", "name": "GitHub", "description": "Code access", "status": "pending", "priority": "high"}]
		}`, nil
	}

	svc := NewOnboardingService(generator, zap.NewNop())

	result := svc.GenerateFlow(context.Background(), onboardingEmployee())

	assert.Equal(t, models.FlowSourceGenerated, result.Source)
	assert.Equal(t, "Priya Patel", result.Employee.Name)
	require.Len(t, result.People, 1)
	assert.Equal(t, "Dana Wu", result.People[0].Name)
	require.Len(t, result.Access, 1)
	assert.Equal(t, "GitHub", result.Access[0].Name)
}

func TestGenerateFlow_FallbackOnGenerationFailure(t *testing.T) {
	generator := llm.NewMockGenerationClient()
	generator.GenerateTextFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "", errors.New("provider down")
	}

	svc := NewOnboardingService(generator, zap.NewNop())

	result := svc.GenerateFlow(context.Background(), onboardingEmployee())

	assert.Equal(t, models.FlowSourceFallback, result.Source)
	require.Len(t, result.People, 3)
	assert.Equal(t, "Sarah Chen", result.People[0].Name)
	// The fallback manager sits in the employee's own department.
	assert.Equal(t, "Engineering", result.People[0].Department)
	assert.NotEmpty(t, result.Processes)
	assert.NotEmpty(t, result.Training)
	assert.NotEmpty(t, result.Access)
}

func TestGenerateFlow_FallbackOnUnparseableResponse(t *testing.T) {
	generator := llm.NewMockGenerationClient()
	generator.GenerateTextFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "Sorry, no JSON here.", nil
	}

	svc := NewOnboardingService(generator, zap.NewNop())

	result := svc.GenerateFlow(context.Background(), onboardingEmployee())
	assert.Equal(t, models.FlowSourceFallback, result.Source)
}

func TestStreamNeeds_ForwardsChunks(t *testing.T) {
	generator := llm.NewMockGenerationClient()
	generator.StreamTextFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64, chunks chan<- string) error {
		assert.Contains(t, prompt, "Priya Patel")
		assert.Contains(t, prompt, "Engineering")
		chunks <- "They will need "
		chunks <- "GitHub access."
		return nil
	}

	svc := NewOnboardingService(generator, zap.NewNop())

	chunks := make(chan string, 10)
	err := svc.StreamNeeds(context.Background(), onboardingEmployee(), chunks)
	require.NoError(t, err)

	assert.Equal(t, "They will need ", <-chunks)
	assert.Equal(t, "GitHub access.", <-chunks)
}
