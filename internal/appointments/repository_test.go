package appointments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryFlagsStayMutuallyExclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, &Appointment{ID: "apt-1"}))
	require.NoError(t, repo.Create(ctx, &Appointment{ID: "apt-2"}))

	require.NoError(t, repo.MarkCompleted(ctx, "apt-1"))
	assert.ErrorIs(t, repo.MarkCancelled(ctx, "apt-1"), ErrAlreadyCompleted)

	require.NoError(t, repo.MarkCancelled(ctx, "apt-2"))
	assert.ErrorIs(t, repo.MarkCompleted(ctx, "apt-2"), ErrAlreadyCancelled)

	got, err := repo.GetByID(ctx, "apt-1")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.False(t, got.Cancelled)
}
