package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/llm"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// OnboardingService generates structured onboarding plans and streams
// onboarding-needs analysis.
type OnboardingService struct {
	generator llm.GenerationClient
	logger    *zap.Logger
}

// NewOnboardingService creates an onboarding service.
func NewOnboardingService(generator llm.GenerationClient, logger *zap.Logger) *OnboardingService {
	return &OnboardingService{
		generator: generator,
		logger:    logger.Named("onboarding"),
	}
}

const flowSystemMessage = `You are an onboarding specialist. Generate a JSON object with these exact keys: people, processes, training, access.

CRITICAL:
- people must be an ARRAY of person objects
- processes must be an ARRAY of process objects
- training must be an ARRAY of training objects
- access must be an ARRAY of access objects

Each object must have ALL required fields filled with realistic data.`

// GenerateFlow produces a structured onboarding plan for the employee.
// Generation or validation failure is not an error: the caller always
// gets a usable flow, tagged with the path that produced it.
func (s *OnboardingService) GenerateFlow(ctx context.Context, employee *models.OnboardingEmployee) *models.OnboardingFlowResult {
	response, err := s.generator.GenerateText(ctx, flowPrompt(employee), flowSystemMessage, 0.7)
	if err != nil {
		s.logger.Warn("Onboarding flow generation failed, using fallback",
			zap.String("employee", employee.Name),
			zap.Error(err))
		return fallbackFlow(employee)
	}

	flow, err := llm.ParseJSONResponse[models.OnboardingFlow](response)
	if err != nil {
		s.logger.Warn("Onboarding flow response unparseable, using fallback",
			zap.String("employee", employee.Name),
			zap.Error(err))
		return fallbackFlow(employee)
	}

	return &models.OnboardingFlowResult{
		Employee:       employee,
		OnboardingFlow: flow,
		Source:         models.FlowSourceGenerated,
	}
}

// StreamNeeds streams a free-text analysis of what the employee needs to
// be successful.
func (s *OnboardingService) StreamNeeds(ctx context.Context, employee *models.OnboardingEmployee, chunks chan<- string) error {
	prompt := fmt.Sprintf(`You are analyzing the onboarding needs for %s, a %s in the %s department starting on %s.

Think through what this person needs to be successful:
1. Who are the key people they need to meet and why?
2. What processes and documentation should they review?
3. What training would be most valuable for their role?
4. What system access do they need on day one?

Consider their specific role responsibilities and how they'll interact with different teams.`,
		employee.Name, employee.Role, employee.Department, employee.StartDate)

	return s.generator.StreamText(ctx, prompt, "", 0.7, chunks)
}

func flowPrompt(employee *models.OnboardingEmployee) string {
	return fmt.Sprintf(`Create an onboarding plan for %s, %s in %s.

Return JSON with this EXACT structure:
{
  "people": [
    {
      "id": "unique-id",
      "name": "Full Name",
      "role": "Their Role",
      "department": "Their Department",
      "email": "email@company.com",
      "connectionType": "direct" or "indirect",
      "reasoning": "Why they need to connect (REQUIRED for indirect, omit or null for direct)"
    }
  ],
  "processes": [
    {
      "id": "unique-id",
      "title": "Process Title",
      "description": "Brief description",
      "source": "notion" or "web" or "internal",
      "url": "https://example.com/resource",
      "category": "HR Process" or "Team Guidelines" etc
    }
  ],
  "training": [
    {
      "id": "unique-id",
      "title": "Training Title",
      "description": "Brief description",
      "videoUrl": "https://youtube.com/watch?v=...",
      "duration": "15 min",
      "source": "youtube" or "internal"
    }
  ],
  "access": [
    {
      "id": "unique-id",
      "name": "System Name",
      "description": "What it's for",
      "status": "pending" or "completed",
      "priority": "high" or "medium" or "low"
    }
  ]
}

Generate:
- 5-8 people (mix of direct and indirect)
- 4-6 processes
- 3-5 training videos
- 5-7 access items (1-2 completed)`,
		employee.Name, employee.Role, employee.Department)
}

// fallbackFlow is the static plan used when generation fails.
func fallbackFlow(employee *models.OnboardingEmployee) *models.OnboardingFlowResult {
	return &models.OnboardingFlowResult{
		Employee: employee,
		OnboardingFlow: models.OnboardingFlow{
			People: []models.OnboardingPerson{
				{
					ID:             "1",
					Name:           "Sarah Chen",
					Role:           "Manager",
					Department:     employee.Department,
					Email:          "sarah.chen@company.com",
					ConnectionType: "direct",
				},
				{
					ID:             "2",
					Name:           "Alex Johnson",
					Role:           "Team Lead",
					Department:     employee.Department,
					Email:          "alex.johnson@company.com",
					ConnectionType: "direct",
				},
				{
					ID:             "3",
					Name:           "Maria Garcia",
					Role:           "HR Partner",
					Department:     "Human Resources",
					Email:          "maria.garcia@company.com",
					ConnectionType: "indirect",
					Reasoning:      "Will help with benefits enrollment and onboarding paperwork",
				},
			},
			Processes: []models.OnboardingProcess{
				{
					ID:          "1",
					Title:       "Employee Handbook",
					Description: "Company policies and procedures",
					Source:      "internal",
					URL:         "/handbook",
					Category:    "HR Process",
				},
				{
					ID:          "2",
					Title:       "Team Wiki",
					Description: "Department-specific documentation and processes",
					Source:      "notion",
					URL:         "https://notion.so/team-wiki",
					Category:    "Team Guidelines",
				},
			},
			Training: []models.OnboardingTraining{
				{
					ID:          "1",
					Title:       "Company Culture & Values",
					Description: "Introduction to our mission and values",
					VideoURL:    "https://youtube.com/watch?v=example1",
					Duration:    "20 min",
					Source:      "internal",
				},
				{
					ID:          "2",
					Title:       "Security Awareness Training",
					Description: "Essential security practices",
					VideoURL:    "https://youtube.com/watch?v=example2",
					Duration:    "30 min",
					Source:      "youtube",
				},
			},
			Access: []models.OnboardingAccess{
				{
					ID:          "1",
					Name:        "Email Account",
					Description: "Corporate email access",
					Status:      "completed",
					Priority:    "high",
				},
				{
					ID:          "2",
					Name:        "Slack Workspace",
					Description: "Team communication platform",
					Status:      "pending",
					Priority:    "high",
				},
				{
					ID:          "3",
					Name:        "GitHub Access",
					Description: "Code repository access",
					Status:      "pending",
					Priority:    "medium",
				},
			},
		},
		Source: models.FlowSourceFallback,
	}
}
