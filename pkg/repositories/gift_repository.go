package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// GiftTimeLayout is the fixed-width UTC timestamp format stored on gift
// records. Fixed width keeps lexicographic comparison of two timestamps
// equivalent to chronological comparison, which Search relies on.
const GiftTimeLayout = "2006-01-02T15:04:05.000Z"

// Redis key scheme. Every record is reachable via its primary key and
// four index sets; all five keys carry the same retention TTL, refreshed
// on each write.
const (
	giftRecordKeyPrefix   = "gift:selections:"
	giftByGiverKeyPrefix  = "gift:by-giver:"
	giftByRecipientPrefix = "gift:by-recipient:"
	giftByDateKeyPrefix   = "gift:by-date:"
	giftAllKey            = "gift:all"
)

// GiftRepository is durable bookkeeping of gift selections and their
// approval status. "Not found" is an absent result (nil, nil), never an
// error; backend unavailability propagates as an error.
type GiftRepository interface {
	// Store persists a new gift selection with a fresh id and TBD status.
	Store(ctx context.Context, input *models.GiftSelectionInput) (*models.GiftRecord, error)

	// Get returns the record for id, or nil if absent or expired.
	Get(ctx context.Context, id string) (*models.GiftRecord, error)

	// GetAll resolves the global index set to records. Index entries whose
	// backing record has expired are silently skipped.
	GetAll(ctx context.Context) ([]*models.GiftRecord, error)

	// GetByGiver returns the giver's records, expired entries skipped.
	GetByGiver(ctx context.Context, giverID string) ([]*models.GiftRecord, error)

	// GetByRecipient returns the recipient's records, expired entries skipped.
	GetByRecipient(ctx context.Context, recipientID string) ([]*models.GiftRecord, error)

	// GetByDate returns records selected on the given UTC day (YYYY-MM-DD).
	GetByDate(ctx context.Context, date string) ([]*models.GiftRecord, error)

	// UpdateStatus overwrites the record's status and stamps
	// statusUpdatedAt/statusUpdatedBy, refreshing the record's TTL.
	// Returns nil if the record is absent. Read-modify-write with no
	// concurrency check: concurrent updates race, last write wins.
	UpdateStatus(ctx context.Context, id string, status models.GiftStatus, updatedBy string) (*models.GiftRecord, error)

	// IsAlreadySelected reports whether any of the recipient's records
	// reference the given catalog gift id. Advisory only: the check and a
	// subsequent Store are not one atomic operation.
	IsAlreadySelected(ctx context.Context, giftID, recipientID string) (bool, error)

	// Stats counts all live records by status.
	Stats(ctx context.Context) (*models.GiftStats, error)

	// Search starts from the most selective available index and applies
	// the remaining criteria in memory.
	Search(ctx context.Context, criteria *models.GiftSearchCriteria) ([]*models.GiftRecord, error)
}

type redisGiftRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewGiftRepository creates a Redis-backed gift repository. Records and
// index sets expire retentionDays after their last write.
func NewGiftRepository(client *redis.Client, retentionDays int, logger *zap.Logger) GiftRepository {
	return &redisGiftRepository{
		client: client,
		ttl:    time.Duration(retentionDays) * 24 * time.Hour,
		logger: logger.Named("gifts"),
		now:    time.Now,
	}
}

func (r *redisGiftRepository) Store(ctx context.Context, input *models.GiftSelectionInput) (*models.GiftRecord, error) {
	now := r.now().UTC().Format(GiftTimeLayout)
	dateKey := now[:10] // YYYY-MM-DD

	record := &models.GiftRecord{
		ID:             uuid.NewString(),
		GiftID:         input.Gift.ID,
		GiftName:       input.Gift.Name,
		GiftCategory:   input.Gift.Category,
		GiftPrice:      input.Gift.Price,
		GiftPriceRange: input.Gift.PriceRange,
		GiftImage:      input.Gift.Image,
		GiftURL:        input.Gift.URL,
		AffinityScore:  input.Gift.AffinityScore,

		SelectedBy:      input.SelectedBy.ID,
		SelectedByName:  input.SelectedBy.Name,
		SelectedFor:     input.SelectedFor.ID,
		SelectedForName: input.SelectedFor.Name,
		SelectedAt:      now,
		Occasion:        input.Occasion,
		Notes:           input.Notes,
		Sources:         input.Sources,

		Status: models.GiftStatusTBD,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal gift record: %w", err)
	}

	// One transactional pipeline per store, so the record and its four
	// index entries never partially apply.
	pipe := r.client.TxPipeline()

	pipe.Set(ctx, giftRecordKeyPrefix+record.ID, payload, r.ttl)

	giverKey := giftByGiverKeyPrefix + input.SelectedBy.ID
	pipe.SAdd(ctx, giverKey, record.ID)
	pipe.Expire(ctx, giverKey, r.ttl)

	recipientKey := giftByRecipientPrefix + input.SelectedFor.ID
	pipe.SAdd(ctx, recipientKey, record.ID)
	pipe.Expire(ctx, recipientKey, r.ttl)

	dateSetKey := giftByDateKeyPrefix + dateKey
	pipe.SAdd(ctx, dateSetKey, record.ID)
	pipe.Expire(ctx, dateSetKey, r.ttl)

	pipe.SAdd(ctx, giftAllKey, record.ID)
	pipe.Expire(ctx, giftAllKey, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store gift record: %w", err)
	}

	r.logger.Debug("Stored gift selection",
		zap.String("id", record.ID),
		zap.String("gift_id", record.GiftID),
		zap.String("selected_for", record.SelectedFor))

	return record, nil
}

func (r *redisGiftRepository) Get(ctx context.Context, id string) (*models.GiftRecord, error) {
	data, err := r.client.Get(ctx, giftRecordKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gift record: %w", err)
	}

	var record models.GiftRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal gift record %s: %w", id, err)
	}
	return &record, nil
}

func (r *redisGiftRepository) GetAll(ctx context.Context) ([]*models.GiftRecord, error) {
	return r.resolveIndex(ctx, giftAllKey)
}

func (r *redisGiftRepository) GetByGiver(ctx context.Context, giverID string) ([]*models.GiftRecord, error) {
	return r.resolveIndex(ctx, giftByGiverKeyPrefix+giverID)
}

func (r *redisGiftRepository) GetByRecipient(ctx context.Context, recipientID string) ([]*models.GiftRecord, error) {
	return r.resolveIndex(ctx, giftByRecipientPrefix+recipientID)
}

func (r *redisGiftRepository) GetByDate(ctx context.Context, date string) ([]*models.GiftRecord, error) {
	return r.resolveIndex(ctx, giftByDateKeyPrefix+date)
}

// resolveIndex fetches the member ids of an index set, then batch-fetches
// the backing records in one pipeline. Ids whose record has expired are
// skipped: the index may transiently reference dead records between TTL
// boundaries, which is an accepted consistency window.
func (r *redisGiftRepository) resolveIndex(ctx context.Context, indexKey string) ([]*models.GiftRecord, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("resolve gift index %s: %w", indexKey, err)
	}
	if len(ids) == 0 {
		return []*models.GiftRecord{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, giftRecordKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("fetch gift records: %w", err)
	}

	records := make([]*models.GiftRecord, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch gift record %s: %w", ids[i], err)
		}

		var record models.GiftRecord
		if err := json.Unmarshal(data, &record); err != nil {
			r.logger.Warn("Skipping undecodable gift record",
				zap.String("id", ids[i]),
				zap.Error(err))
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

func (r *redisGiftRepository) UpdateStatus(ctx context.Context, id string, status models.GiftStatus, updatedBy string) (*models.GiftRecord, error) {
	if !status.IsUpdatable() {
		return nil, fmt.Errorf("cannot update gift to status %q", status)
	}

	record, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	record.Status = status
	record.StatusUpdatedAt = r.now().UTC().Format(GiftTimeLayout)
	if updatedBy != "" {
		record.StatusUpdatedBy = updatedBy
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal gift record: %w", err)
	}
	if err := r.client.Set(ctx, giftRecordKeyPrefix+id, payload, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("update gift status: %w", err)
	}

	r.logger.Debug("Updated gift status",
		zap.String("id", id),
		zap.String("status", string(status)),
		zap.String("updated_by", updatedBy))

	return record, nil
}

func (r *redisGiftRepository) IsAlreadySelected(ctx context.Context, giftID, recipientID string) (bool, error) {
	records, err := r.GetByRecipient(ctx, recipientID)
	if err != nil {
		return false, err
	}
	for _, record := range records {
		if record.GiftID == giftID {
			return true, nil
		}
	}
	return false, nil
}

func (r *redisGiftRepository) Stats(ctx context.Context) (*models.GiftStats, error) {
	records, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.GiftStats{TotalGifts: len(records)}
	for _, record := range records {
		switch record.Status {
		case models.GiftStatusTBD:
			// Counted as "selected": new selections sit in TBD until the
			// approval flow moves them on.
			stats.SelectedCount++
		case models.GiftStatusPurchased:
			stats.PurchasedCount++
		case models.GiftStatusDelivered:
			stats.DeliveredCount++
		}
	}
	return stats, nil
}

func (r *redisGiftRepository) Search(ctx context.Context, criteria *models.GiftSearchCriteria) ([]*models.GiftRecord, error) {
	// Start from the most selective available index.
	var (
		records []*models.GiftRecord
		err     error
	)
	switch {
	case criteria.GiverID != "":
		records, err = r.GetByGiver(ctx, criteria.GiverID)
	case criteria.RecipientID != "":
		records, err = r.GetByRecipient(ctx, criteria.RecipientID)
	default:
		records, err = r.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*models.GiftRecord, 0, len(records))
	for _, record := range records {
		if criteria.RecipientID != "" && record.SelectedFor != criteria.RecipientID {
			continue
		}
		if criteria.GiverID != "" && record.SelectedBy != criteria.GiverID {
			continue
		}
		if criteria.Status != "" && record.Status != criteria.Status {
			continue
		}
		if criteria.Occasion != "" && record.Occasion != criteria.Occasion {
			continue
		}
		// Date bounds compare as strings; fixed-width ISO-8601 UTC makes
		// that chronological.
		if criteria.StartDate != "" && record.SelectedAt < criteria.StartDate {
			continue
		}
		if criteria.EndDate != "" && record.SelectedAt > criteria.EndDate {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}
