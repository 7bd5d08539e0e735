package services

import (
	"context"

	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/taste"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// mockDirectory is a configurable in-test directory. Unset function fields
// return empty results.
type mockDirectory struct {
	GetEmployeeFunc     func(ctx context.Context, id string) (*models.EmployeeProfile, error)
	ListEmployeesFunc   func(ctx context.Context) ([]*models.EmployeeProfile, error)
	ListNewHiresFunc    func(ctx context.Context) ([]*models.EmployeeProfile, error)
	SearchEmployeesFunc func(ctx context.Context, term string) ([]*models.EmployeeProfile, error)
	CreateEmployeeFunc  func(ctx context.Context, input *models.EmployeeInput) (*models.EmployeeProfile, error)
	UpdateEmployeeFunc  func(ctx context.Context, id string, input *models.EmployeeInput) (*models.EmployeeProfile, error)
}

func (m *mockDirectory) GetEmployee(ctx context.Context, id string) (*models.EmployeeProfile, error) {
	if m.GetEmployeeFunc != nil {
		return m.GetEmployeeFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDirectory) ListEmployees(ctx context.Context) ([]*models.EmployeeProfile, error) {
	if m.ListEmployeesFunc != nil {
		return m.ListEmployeesFunc(ctx)
	}
	return nil, nil
}

func (m *mockDirectory) ListNewHires(ctx context.Context) ([]*models.EmployeeProfile, error) {
	if m.ListNewHiresFunc != nil {
		return m.ListNewHiresFunc(ctx)
	}
	return nil, nil
}

func (m *mockDirectory) SearchEmployees(ctx context.Context, term string) ([]*models.EmployeeProfile, error) {
	if m.SearchEmployeesFunc != nil {
		return m.SearchEmployeesFunc(ctx, term)
	}
	return nil, nil
}

func (m *mockDirectory) CreateEmployee(ctx context.Context, input *models.EmployeeInput) (*models.EmployeeProfile, error) {
	if m.CreateEmployeeFunc != nil {
		return m.CreateEmployeeFunc(ctx, input)
	}
	return nil, nil
}

func (m *mockDirectory) UpdateEmployee(ctx context.Context, id string, input *models.EmployeeInput) (*models.EmployeeProfile, error) {
	if m.UpdateEmployeeFunc != nil {
		return m.UpdateEmployeeFunc(ctx, id, input)
	}
	return nil, nil
}

// mockTasteClient is a configurable in-test insights provider.
type mockTasteClient struct {
	GetInsightsFunc func(ctx context.Context, query *taste.InsightsQuery) ([]*taste.ScoredEntity, error)
	Queries         []*taste.InsightsQuery
}

func (m *mockTasteClient) GetInsights(ctx context.Context, query *taste.InsightsQuery) ([]*taste.ScoredEntity, error) {
	m.Queries = append(m.Queries, query)
	if m.GetInsightsFunc != nil {
		return m.GetInsightsFunc(ctx, query)
	}
	return nil, nil
}

// mockThinkingStreamer records the prompt and replays canned chunks.
type mockThinkingStreamer struct {
	Chunks []string
	Err    error
	Prompt string
}

func (m *mockThinkingStreamer) StreamThinking(ctx context.Context, prompt string, chunks chan<- string) error {
	m.Prompt = prompt
	for _, c := range m.Chunks {
		chunks <- c
	}
	return m.Err
}
