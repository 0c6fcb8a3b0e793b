package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"delliapp/cache"

	"golang.org/x/time/rate"
)

var (
	ErrInvalidOTP  = errors.New("invalid or expired code")
	ErrRateLimited = errors.New("too many codes requested, try again later")
)

const (
	// MaxOTPAttempts wrong guesses burn the issued code.
	MaxOTPAttempts = 5
	// idle limiters are full again after a minute, so dropping them loses nothing.
	limiterIdle = 2 * time.Minute
)

// OTP issues and verifies one-time sign-in codes.
type OTP struct {
	kv  cache.KV
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	limiters  map[string]*emailLimiter
	perMin    int
	lastSweep time.Time
}

type emailLimiter struct {
	*rate.Limiter
	seen time.Time
}

func NewOTP(kv cache.KV, ttl time.Duration, perMin int) *OTP {
	if perMin <= 0 {
		perMin = 1
	}
	return &OTP{kv: kv, ttl: ttl, now: time.Now, limiters: map[string]*emailLimiter{}, perMin: perMin}
}

func otpKey(email string) string  { return "otp:" + email }
func failKey(email string) string { return "otp:fail:" + email }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Issue stores a fresh 6-digit code for email and returns it for delivery.
func (o *OTP) Issue(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if !o.limiter(email).AllowN(o.now(), 1) {
		return "", ErrRateLimited
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := o.kv.Set(ctx, otpKey(email), code, o.ttl); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	if err := o.kv.Del(ctx, failKey(email)); err != nil {
		return "", fmt.Errorf("reset attempts: %w", err)
	}
	return code, nil
}

// Verify consumes the code for email. After MaxOTPAttempts wrong codes the issued
// code is discarded and a new one must be requested.
func (o *OTP) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	stored, err := o.kv.Get(ctx, otpKey(email))
	if errors.Is(err, cache.ErrMiss) {
		return ErrInvalidOTP
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		if err := o.recordFailure(ctx, email); err != nil {
			return err
		}
		return ErrInvalidOTP
	}
	return o.kv.Del(ctx, otpKey(email), failKey(email))
}

func (o *OTP) recordFailure(ctx context.Context, email string) error {
	fails := 0
	v, err := o.kv.Get(ctx, failKey(email))
	switch {
	case err == nil:
		fails, _ = strconv.Atoi(v)
	case !errors.Is(err, cache.ErrMiss):
		return fmt.Errorf("load attempts: %w", err)
	}
	fails++
	if fails >= MaxOTPAttempts {
		if err := o.kv.Del(ctx, otpKey(email), failKey(email)); err != nil {
			return fmt.Errorf("discard code: %w", err)
		}
		return nil
	}
	if err := o.kv.Set(ctx, failKey(email), strconv.Itoa(fails), o.ttl); err != nil {
		return fmt.Errorf("store attempts: %w", err)
	}
	return nil
}

func (o *OTP) limiter(email string) *rate.Limiter {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	if now.Sub(o.lastSweep) >= limiterIdle {
		for k, l := range o.limiters {
			if now.Sub(l.seen) >= limiterIdle {
				delete(o.limiters, k)
			}
		}
		o.lastSweep = now
	}
	l, ok := o.limiters[email]
	if !ok {
		l = &emailLimiter{Limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(o.perMin)), o.perMin)}
		o.limiters[email] = l
	}
	l.seen = now
	return l.Limiter
}
