package users

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	u, err := r.Create(ctx, &models.User{Email: " Ann@Example.com", Username: "Ann", PasswordHash: []byte("h")})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := r.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Username)

	_, err = r.GetByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryRepository_Duplicates(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, &models.User{Email: "ann@example.com", Username: "ann"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.User{Email: "ann@example.com", Username: "other"})
	assert.ErrorIs(t, err, common.ErrDuplicate)

	_, err = r.Create(ctx, &models.User{Email: "bob@example.com", Username: "ANN"})
	assert.ErrorIs(t, err, common.ErrDuplicate)
}

func TestMemoryRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(ctx, &models.User{Email: "ann@example.com", Username: fmt.Sprintf("u%d", i)})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
