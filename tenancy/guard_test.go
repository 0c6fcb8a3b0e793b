package tenancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_CaseInsensitiveAllow(t *testing.T) {
	g := NewGuard(NewDebouncer(2*time.Second), "dono")
	d := g.Check("u1", HostInfo{Subdomain: "loja1"}, " Dono ")
	assert.True(t, d.Allowed)
	assert.False(t, d.Redirect)
}

func TestGuard_BypassOnAdminHostOrNoSubdomain(t *testing.T) {
	g := NewGuard(NewDebouncer(time.Second), "dono")
	assert.True(t, g.Check("u1", HostInfo{IsAdminHost: true}, "").Allowed)
	assert.True(t, g.Check("u1", HostInfo{}, "chef").Allowed)
}

func TestGuard_DeniesAndRedirectsOncePerCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	deb := NewDebouncer(2 * time.Second)
	deb.now = func() time.Time { return now }
	g := NewGuard(deb, "dono")
	info := HostInfo{Subdomain: "loja1"}

	redirects := 0
	for i := 0; i < 5; i++ {
		d := g.Check("u1", info, "chef")
		require.False(t, d.Allowed)
		require.Equal(t, NoticeAccessDenied, d.Notice)
		if d.Redirect {
			redirects++
		}
		now = now.Add(300 * time.Millisecond)
	}
	assert.Equal(t, 1, redirects)

	// re-armed after the window
	now = now.Add(2 * time.Second)
	assert.True(t, g.Check("u1", info, "chef").Redirect)
	// other keys are independent
	assert.True(t, g.Check("u2", info, "chef").Redirect)
}
