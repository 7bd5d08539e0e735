package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

func newTestRepository(t *testing.T) (*redisGiftRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewGiftRepository(client, 90, zap.NewNop()).(*redisGiftRepository)
	return repo, mr
}

func sampleInput(giftID, recipientID string) *models.GiftSelectionInput {
	return &models.GiftSelectionInput{
		Gift: models.GiftDescriptor{
			ID:       giftID,
			Name:     "Espresso Machine",
			Category: "Kitchen",
		},
		SelectedBy:  models.Identity{ID: "giver-1", Name: "Dana"},
		SelectedFor: models.Identity{ID: recipientID, Name: "Riley"},
		Occasion:    "welcome",
	}
}

func TestStore_AssignsUniqueIDs(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		record, err := repo.Store(ctx, sampleInput("G1", "R1"))
		require.NoError(t, err)
		require.NotEmpty(t, record.ID)
		assert.False(t, seen[record.ID], "id %s assigned twice", record.ID)
		seen[record.ID] = true
	}
}

func TestStore_InitialStatus(t *testing.T) {
	repo, _ := newTestRepository(t)

	record, err := repo.Store(context.Background(), sampleInput("G1", "R1"))
	require.NoError(t, err)

	assert.Equal(t, models.GiftStatusTBD, record.Status)
	assert.Empty(t, record.StatusUpdatedAt)
	assert.Empty(t, record.StatusUpdatedBy)
	assert.NotEmpty(t, record.SelectedAt)
}

func TestStore_IndexMembershipAndTTL(t *testing.T) {
	repo, mr := newTestRepository(t)
	ctx := context.Background()

	record, err := repo.Store(ctx, sampleInput("G1", "R1"))
	require.NoError(t, err)

	dateKey := record.SelectedAt[:10]
	keys := []string{
		giftRecordKeyPrefix + record.ID,
		giftByGiverKeyPrefix + "giver-1",
		giftByRecipientPrefix + "R1",
		giftByDateKeyPrefix + dateKey,
		giftAllKey,
	}
	for _, key := range keys {
		assert.True(t, mr.Exists(key), "expected key %s", key)
		assert.Greater(t, mr.TTL(key), time.Duration(0), "expected TTL on %s", key)
	}

	for _, setKey := range keys[1:] {
		members, err := mr.SMembers(setKey)
		require.NoError(t, err)
		assert.Contains(t, members, record.ID)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	price := 129.0
	input := sampleInput("G1", "R1")
	input.Gift.Price = &price
	input.Notes = "left-handed model"
	input.Sources = &models.GiftProvenance{Signals: []string{"demographics.age"}}

	stored, err := repo.Store(ctx, input)
	require.NoError(t, err)

	got, err := repo.Get(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored, got)
}

func TestGet_AbsentIsNil(t *testing.T) {
	repo, _ := newTestRepository(t)

	got, err := repo.Get(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateStatus(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.Store(ctx, sampleInput("G1", "R1"))
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, stored.ID, models.GiftStatusAccepted, "u1")
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, models.GiftStatusAccepted, updated.Status)
	assert.Equal(t, "u1", updated.StatusUpdatedBy)
	assert.GreaterOrEqual(t, updated.StatusUpdatedAt, stored.SelectedAt)

	// The stored record reflects the update.
	got, err := repo.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateStatus_AbsentIsNil(t *testing.T) {
	repo, _ := newTestRepository(t)

	updated, err := repo.UpdateStatus(context.Background(), "no-such-id", models.GiftStatusAccepted, "u1")
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestUpdateStatus_RejectsTBD(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.Store(ctx, sampleInput("G1", "R1"))
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, stored.ID, models.GiftStatusTBD, "u1")
	assert.Error(t, err)
}

func TestIsAlreadySelected(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Store(ctx, sampleInput("G1", "R1"))
	require.NoError(t, err)

	selected, err := repo.IsAlreadySelected(ctx, "G1", "R1")
	require.NoError(t, err)
	assert.True(t, selected)

	selected, err = repo.IsAlreadySelected(ctx, "G1", "R2")
	require.NoError(t, err)
	assert.False(t, selected)
}

func TestGetAll_SkipsExpiredRecords(t *testing.T) {
	repo, mr := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Store(ctx, sampleInput("G1", "R1"))
	require.NoError(t, err)
	second, err := repo.Store(ctx, sampleInput("G2", "R2"))
	require.NoError(t, err)

	// Simulate the record expiring while its index entry survives.
	mr.Del(giftRecordKeyPrefix + first.ID)

	records, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second.ID, records[0].ID)
}

func TestGetByDate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.Store(ctx, sampleInput("G1", "R1"))
	require.NoError(t, err)

	records, err := repo.GetByDate(ctx, stored.SelectedAt[:10])
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, stored.ID, records[0].ID)

	records, err = repo.GetByDate(ctx, "1999-01-01")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_FilterComposition(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	inputX := sampleInput("G1", "X")
	inputX.SelectedBy = models.Identity{ID: "A", Name: "A"}
	first, err := repo.Store(ctx, inputX)
	require.NoError(t, err)

	inputY := sampleInput("G2", "Y")
	inputY.SelectedBy = models.Identity{ID: "A", Name: "A"}
	second, err := repo.Store(ctx, inputY)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, second.ID, models.GiftStatusAccepted, "hr1")
	require.NoError(t, err)

	results, err := repo.Search(ctx, &models.GiftSearchCriteria{
		GiverID: "A",
		Status:  models.GiftStatusAccepted,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, second.ID, results[0].ID)

	results, err = repo.Search(ctx, &models.GiftSearchCriteria{
		GiverID:     "A",
		RecipientID: "X",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, first.ID, results[0].ID)
}

func TestSearch_DateBounds(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.AddDate(0, 0, 2), base.AddDate(0, 0, 4)}
	idx := 0
	repo.now = func() time.Time {
		now := times[idx]
		idx++
		return now
	}

	var ids []string
	for i := 0; i < 3; i++ {
		record, err := repo.Store(ctx, sampleInput("G1", "R1"))
		require.NoError(t, err)
		ids = append(ids, record.ID)
	}

	results, err := repo.Search(ctx, &models.GiftSearchCriteria{
		StartDate: "2026-03-11",
		EndDate:   "2026-03-13",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ids[1], results[0].ID)
}

func TestStats_CountsTBDAsSelected(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Store(ctx, sampleInput("G1", "R1"))
	require.NoError(t, err)
	_, err = repo.Store(ctx, sampleInput("G2", "R2"))
	require.NoError(t, err)
	third, err := repo.Store(ctx, sampleInput("G3", "R3"))
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, first.ID, models.GiftStatusPurchased, "u1")
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, third.ID, models.GiftStatusDelivered, "u1")
	require.NoError(t, err)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalGifts)
	assert.Equal(t, 1, stats.SelectedCount)
	assert.Equal(t, 1, stats.PurchasedCount)
	assert.Equal(t, 1, stats.DeliveredCount)
}
