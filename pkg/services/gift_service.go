package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/apperrors"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
	"github.com/onbloom-hq/onbloom-engine/pkg/repositories"
)

// SelectionFilter narrows the gift-selection listing.
type SelectionFilter struct {
	// Mine restricts to gifts selected by the caller.
	Mine bool
	// RecipientID restricts to gifts selected for one recipient.
	RecipientID string
	// GiverID restricts to gifts selected by one giver.
	GiverID string
}

// SelectionList is the gifts-plus-stats envelope returned by the
// selection listing.
type SelectionList struct {
	Gifts []*models.GiftRecord `json:"gifts"`
	Stats *models.GiftStats    `json:"stats"`
}

// Pagination describes one page of a larger result set.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"totalCount"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// StatusSummary counts the filtered result set by status.
type StatusSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Denied    int `json:"denied"`
	Purchased int `json:"purchased"`
	Delivered int `json:"delivered"`
}

// GiftList is one page of search results plus the whole result set's
// status summary.
type GiftList struct {
	Gifts      []*models.GiftRecord `json:"gifts"`
	Pagination *Pagination          `json:"pagination"`
	Stats      *StatusSummary       `json:"stats"`
}

// GiftService coordinates gift selection, approval, and listing on top of
// the repository.
type GiftService struct {
	repo   repositories.GiftRepository
	logger *zap.Logger
}

// NewGiftService creates a gift service.
func NewGiftService(repo repositories.GiftRepository, logger *zap.Logger) *GiftService {
	return &GiftService{
		repo:   repo,
		logger: logger.Named("gifts"),
	}
}

// Select stores a new gift selection after checking the duplicate guard.
// The guard is advisory: the check and the store are two operations, so
// concurrent selections of the same gift for the same recipient can race.
func (s *GiftService) Select(ctx context.Context, input *models.GiftSelectionInput) (*models.GiftRecord, error) {
	selected, err := s.repo.IsAlreadySelected(ctx, input.Gift.ID, input.SelectedFor.ID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate selection: %w", err)
	}
	if selected {
		return nil, apperrors.ErrDuplicateSelection
	}

	return s.repo.Store(ctx, input)
}

// SubmitForApproval stores a gift with the initial TBD status, awaiting an
// approval decision.
func (s *GiftService) SubmitForApproval(ctx context.Context, input *models.GiftSelectionInput) (*models.GiftRecord, error) {
	return s.repo.Store(ctx, input)
}

// Decide transitions a pending gift to Accepted or Denied.
func (s *GiftService) Decide(ctx context.Context, giftID string, status models.GiftStatus, decidedBy string) (*models.GiftRecord, error) {
	if status != models.GiftStatusAccepted && status != models.GiftStatusDenied {
		return nil, apperrors.ErrInvalidStatus
	}

	record, err := s.repo.UpdateStatus(ctx, giftID, status, decidedBy)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

// UpdateStatus transitions a gift to any updatable status.
func (s *GiftService) UpdateStatus(ctx context.Context, giftID string, status models.GiftStatus, updatedBy string) (*models.GiftRecord, error) {
	if !status.IsUpdatable() {
		return nil, apperrors.ErrInvalidStatus
	}

	record, err := s.repo.UpdateStatus(ctx, giftID, status, updatedBy)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

// ListSelections returns gifts for the given filter, most recent first,
// alongside global stats.
func (s *GiftService) ListSelections(ctx context.Context, callerID string, filter *SelectionFilter) (*SelectionList, error) {
	var (
		gifts []*models.GiftRecord
		err   error
	)
	switch {
	case filter.Mine:
		gifts, err = s.repo.GetByGiver(ctx, callerID)
	case filter.RecipientID != "":
		gifts, err = s.repo.GetByRecipient(ctx, filter.RecipientID)
	case filter.GiverID != "":
		gifts, err = s.repo.GetByGiver(ctx, filter.GiverID)
	default:
		gifts, err = s.repo.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	sortMostRecentFirst(gifts)

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &SelectionList{Gifts: gifts, Stats: stats}, nil
}

// List searches gifts by the given criteria and returns one page, most
// recent first, with a status summary over the whole filtered set.
func (s *GiftService) List(ctx context.Context, criteria *models.GiftSearchCriteria, page, limit int) (*GiftList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	gifts, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	sortMostRecentFirst(gifts)

	summary := &StatusSummary{Total: len(gifts)}
	for _, g := range gifts {
		switch g.Status {
		case models.GiftStatusTBD:
			summary.Pending++
		case models.GiftStatusAccepted:
			summary.Accepted++
		case models.GiftStatusDenied:
			summary.Denied++
		case models.GiftStatusPurchased:
			summary.Purchased++
		case models.GiftStatusDelivered:
			summary.Delivered++
		}
	}

	totalPages := (len(gifts) + limit - 1) / limit
	start := (page - 1) * limit
	end := start + limit
	if start > len(gifts) {
		start = len(gifts)
	}
	if end > len(gifts) {
		end = len(gifts)
	}

	return &GiftList{
		Gifts: gifts[start:end],
		Pagination: &Pagination{
			Page:       page,
			Limit:      limit,
			TotalCount: len(gifts),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
		Stats: summary,
	}, nil
}

// sortMostRecentFirst orders by SelectedAt descending. The fixed-width
// timestamp format makes the string comparison chronological.
func sortMostRecentFirst(gifts []*models.GiftRecord) {
	sort.SliceStable(gifts, func(i, j int) bool {
		return gifts[i].SelectedAt > gifts[j].SelectedAt
	})
}
