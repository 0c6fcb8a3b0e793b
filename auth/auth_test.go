package auth

import (
	"context"
	"testing"
	"time"

	"delliapp/cache"
	"delliapp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	p := &models.Profile{Base: models.Base{ID: "u1"}, Email: "a@b.c", Role: models.RoleAdmin}

	signed, exp, err := tokens.Issue(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = NewTokens("other", time.Hour).Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	signed, _, err := tokens.Issue(&models.Profile{Base: models.Base{ID: "u1"}})
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_TrackingIsNotASession(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tracking, err := tokens.IssueTracking("o1", "t1")
	require.NoError(t, err)

	claims, err := tokens.ParseTracking(tracking)
	require.NoError(t, err)
	assert.Equal(t, "o1", claims.OrderID)
	assert.Equal(t, "t1", claims.TeamID)

	session, _, err := tokens.Issue(&models.Profile{Base: models.Base{ID: "u1"}})
	require.NoError(t, err)
	_, err = tokens.ParseTracking(session)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", ""))
}

func TestOTP_IssueVerifyConsume(t *testing.T) {
	ctx := context.Background()
	otp := NewOTP(cache.NewMemoryKV(), time.Minute, 5)

	code, err := otp.Issue(ctx, " Ana@Example.com ")
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.ErrorIs(t, otp.Verify(ctx, "ana@example.com", "xxxxxx"), ErrInvalidOTP)
	require.NoError(t, otp.Verify(ctx, "ana@example.com", code))
	require.ErrorIs(t, otp.Verify(ctx, "ana@example.com", code), ErrInvalidOTP)
}

func TestOTP_RateLimitedPerEmail(t *testing.T) {
	ctx := context.Background()
	otp := NewOTP(cache.NewMemoryKV(), time.Minute, 2)

	_, err := otp.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = otp.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = otp.Issue(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrRateLimited)

	_, err = otp.Issue(ctx, "b@x.com")
	require.NoError(t, err)
}

func TestOTP_WrongGuessesBurnTheCode(t *testing.T) {
	ctx := context.Background()
	otp := NewOTP(cache.NewMemoryKV(), time.Minute, 5)

	code, err := otp.Issue(ctx, "ana@example.com")
	require.NoError(t, err)
	for i := 0; i < MaxOTPAttempts; i++ {
		require.ErrorIs(t, otp.Verify(ctx, "ana@example.com", "xxxxxx"), ErrInvalidOTP)
	}
	require.ErrorIs(t, otp.Verify(ctx, "ana@example.com", code), ErrInvalidOTP)

	// a fresh code starts a fresh attempt budget
	code, err = otp.Issue(ctx, "ana@example.com")
	require.NoError(t, err)
	for i := 0; i < MaxOTPAttempts-1; i++ {
		require.ErrorIs(t, otp.Verify(ctx, "ana@example.com", "xxxxxx"), ErrInvalidOTP)
	}
	require.NoError(t, otp.Verify(ctx, "ana@example.com", code))
}

func TestOTP_IdleLimitersAreEvicted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	otp := NewOTP(cache.NewMemoryKV(), time.Minute, 1)
	otp.now = func() time.Time { return now }

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := otp.Issue(ctx, email)
		require.NoError(t, err)
	}
	_, err := otp.Issue(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, otp.limiters, 3)

	now = now.Add(limiterIdle)
	_, err = otp.Issue(ctx, "d@x.com")
	require.NoError(t, err)
	assert.Len(t, otp.limiters, 1)

	_, err = otp.Issue(ctx, "a@x.com")
	require.NoError(t, err)
}
