package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/taste"
	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/email"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// passingAuthService accepts every request as user-1.
type passingAuthService struct{}

func (passingAuthService) ValidateRequest(r *http.Request) (*auth.Claims, string, error) {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		Name:             "Dana",
	}, "token", nil
}

// failingAuthService rejects every request.
type failingAuthService struct{}

func (failingAuthService) ValidateRequest(r *http.Request) (*auth.Claims, string, error) {
	return nil, "", errors.New("no token")
}

// stubDirectory serves fixed profiles by id.
type stubDirectory struct {
	Profiles map[string]*models.EmployeeProfile
}

func (s *stubDirectory) GetEmployee(ctx context.Context, id string) (*models.EmployeeProfile, error) {
	return s.Profiles[id], nil
}

func (s *stubDirectory) ListEmployees(ctx context.Context) ([]*models.EmployeeProfile, error) {
	out := make([]*models.EmployeeProfile, 0, len(s.Profiles))
	for _, p := range s.Profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubDirectory) ListNewHires(ctx context.Context) ([]*models.EmployeeProfile, error) {
	var out []*models.EmployeeProfile
	for _, p := range s.Profiles {
		if p.HasTag("New Hire") {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubDirectory) SearchEmployees(ctx context.Context, term string) ([]*models.EmployeeProfile, error) {
	return s.ListEmployees(ctx)
}

func (s *stubDirectory) CreateEmployee(ctx context.Context, input *models.EmployeeInput) (*models.EmployeeProfile, error) {
	return &models.EmployeeProfile{ID: "created-1", Name: input.Name, Email: input.Email, Department: input.Department, Role: input.Role}, nil
}

func (s *stubDirectory) UpdateEmployee(ctx context.Context, id string, input *models.EmployeeInput) (*models.EmployeeProfile, error) {
	p, ok := s.Profiles[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

// stubTaste serves fixed scored entities.
type stubTaste struct {
	Entities []*taste.ScoredEntity
	Err      error
}

func (s *stubTaste) GetInsights(ctx context.Context, query *taste.InsightsQuery) ([]*taste.ScoredEntity, error) {
	return s.Entities, s.Err
}

// stubSender records the last sent message.
type stubSender struct {
	Sent *email.Message
	Err  error
}

func (s *stubSender) Send(ctx context.Context, msg *email.Message) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.Sent = msg
	return "msg-1", nil
}
