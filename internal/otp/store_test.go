package otp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyconsult/backend/pkg/logging"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, ttl, logging.Default()), mr
}

func TestIssueAndVerify(t *testing.T) {
	store, _ := newTestStore(t, 10*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "pat@example.com")
	require.NoError(t, err)
	require.Len(t, code, codeLength)

	require.NoError(t, store.Verify(ctx, "pat@example.com", code))

	// verification does not consume the code
	require.NoError(t, store.Verify(ctx, "pat@example.com", code))
}

func TestVerifyEmailIsCaseInsensitive(t *testing.T) {
	store, _ := newTestStore(t, 10*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "Pat@Example.com")
	require.NoError(t, err)
	require.NoError(t, store.Verify(ctx, "pat@example.com", code))
}

func TestVerifyMismatch(t *testing.T) {
	store, _ := newTestStore(t, 10*time.Minute)
	ctx := context.Background()

	_, err := store.Issue(ctx, "pat@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Verify(ctx, "pat@example.com", "000000x"), ErrCodeMismatch)
}

func TestVerifyMissing(t *testing.T) {
	store, _ := newTestStore(t, 10*time.Minute)
	assert.ErrorIs(t, store.Verify(context.Background(), "nobody@example.com", "123456"), ErrCodeNotFound)
}

func TestVerifyExpiredCheckedOnRead(t *testing.T) {
	store, mr := newTestStore(t, 10*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "pat@example.com")
	require.NoError(t, err)

	// Rewrite the entry as already expired; the redis key itself still
	// exists, so the read-side check must catch it.
	payload, err := json.Marshal(entry{Code: code, ExpiresAt: time.Now().UTC().Add(-time.Minute)})
	require.NoError(t, err)
	mr.Set(key("pat@example.com"), string(payload))

	assert.ErrorIs(t, store.Verify(ctx, "pat@example.com", code), ErrCodeExpired)

	// The expired entry was dropped on read.
	assert.ErrorIs(t, store.Verify(ctx, "pat@example.com", code), ErrCodeNotFound)
}

func TestInvalidate(t *testing.T) {
	store, _ := newTestStore(t, 10*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "pat@example.com")
	require.NoError(t, err)
	require.NoError(t, store.Invalidate(ctx, "pat@example.com"))
	assert.ErrorIs(t, store.Verify(ctx, "pat@example.com", code), ErrCodeNotFound)
}

func TestIssueReplacesPreviousCode(t *testing.T) {
	store, _ := newTestStore(t, 10*time.Minute)
	ctx := context.Background()

	first, err := store.Issue(ctx, "pat@example.com")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "pat@example.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, store.Verify(ctx, "pat@example.com", first), ErrCodeMismatch)
	}
	require.NoError(t, store.Verify(ctx, "pat@example.com", second))
}
