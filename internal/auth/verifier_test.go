package auth

import (
	"context"
	"testing"
	"time"

	"virtual_wallet/internal/domain"
	"virtual_wallet/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	alice, err := st.Users().Create(ctx, "alice", "hash", decimal.NewFromInt(100))
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	v := NewVerifier("secret", 30*time.Minute, st.Users())
	v.now = func() time.Time { return now }

	token, exp, err := v.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), exp)

	user, err := v.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = v.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)

	forged := NewVerifier("other", 30*time.Minute, st.Users())
	forged.now = v.now
	forgedToken, _, err := forged.Issue("alice")
	require.NoError(t, err)
	_, err = v.Verify(ctx, forgedToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)

	ghost, _, err := v.Issue("ghost")
	require.NoError(t, err)
	_, err = v.Verify(ctx, ghost)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	v.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, err = v.Verify(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}
