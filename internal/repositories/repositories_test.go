package repositories_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopfront/internal/models"
	"shopfront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockReviewRepository_ConcurrentDuplicates(t *testing.T) {
	repo := repositories.NewMockReviewRepository()
	ctx := context.Background()

	const attempts = 20
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &models.Review{UserID: "u1", ProductID: "p1", Comment: "same"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repositories.ErrDuplicate):
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, duplicates)

	reviews, err := repo.GetByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestMockReviewRepository_Lookups(t *testing.T) {
	repo := repositories.NewMockReviewRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &models.Review{UserID: "u1", ProductID: "p1", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.Review{UserID: "u2", ProductID: "p1", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.Review{UserID: "u1", ProductID: "p2", CreatedAt: base}))

	byProduct, err := repo.GetByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	assert.Equal(t, "u2", byProduct[0].UserID)

	byUser, err := repo.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	_, err = repo.GetByUserAndProduct(ctx, "u2", "p2")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMockOrderRepository_StatusAndViewed(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	ctx := context.Background()

	order := &models.Order{UserID: "u1", Status: models.StatusOrderPlaced}
	require.NoError(t, repo.Create(ctx, order))
	require.NotEmpty(t, order.ID)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.StatusDelivered))
	delivered, err := repo.GetByUserAndStatus(ctx, "u1", models.StatusDelivered)
	require.NoError(t, err)
	assert.Len(t, delivered, 1)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.StatusShipped), repositories.ErrNotFound)

	count, err := repo.CountUnviewed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	matched, err := repo.MarkViewed(ctx, []string{order.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	count, err = repo.CountUnviewed(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
