package tenancy

import (
	"sync"
	"time"

	"delliapp/models"
)

// NoticeAccessDenied is attached to the redirect issued on denial.
const NoticeAccessDenied = "access_denied"

// Debouncer lets a keyed action fire at most once per cool-down window.
type Debouncer struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

func NewDebouncer(cooldown time.Duration) *Debouncer {
	return &Debouncer{cooldown: cooldown, last: map[string]time.Time{}, now: time.Now}
}

// Fire reports whether the action for key may run now. After a true result every
// call for the same key returns false until the cool-down has elapsed.
func (d *Debouncer) Fire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if at, ok := d.last[key]; ok && now.Sub(at) < d.cooldown {
		return false
	}
	for k, at := range d.last {
		if now.Sub(at) >= d.cooldown {
			delete(d.last, k)
		}
	}
	d.last[key] = now
	return true
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed  bool
	Redirect bool
	Notice   string
}

// Guard gates a page to a set of tenant-scoped roles.
type Guard struct {
	allowed  map[string]struct{}
	debounce *Debouncer
}

// NewGuard normalizes the allowed roles. d may be shared between guards.
func NewGuard(d *Debouncer, allowed ...string) *Guard {
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[models.NormalizeRole(r)] = struct{}{}
	}
	return &Guard{allowed: set, debounce: d}
}

// Check always allows on the reserved admin host or when no subdomain is active.
// Otherwise memberRole must be in the allowed set; a denial asks for a redirect only
// the first time for key within the debounce window.
func (g *Guard) Check(key string, info HostInfo, memberRole string) Decision {
	if info.IsAdminHost || !info.HasSubdomain() {
		return Decision{Allowed: true}
	}
	if _, ok := g.allowed[models.NormalizeRole(memberRole)]; ok {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: g.debounce.Fire(key), Notice: NoticeAccessDenied}
}
