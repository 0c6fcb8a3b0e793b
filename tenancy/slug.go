package tenancy

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidSlug = errors.New("invalid slug")

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// reservedLabels never name a team, besides the admin label itself.
var reservedLabels = map[string]bool{"www": true}

// NormalizeSlug lower-cases slug and checks that ParseHost can resolve it as a
// tenant subdomain under cfg.
func NormalizeSlug(slug string, cfg HostConfig) (string, error) {
	s := strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(s) || reservedLabels[s] || s == strings.ToLower(cfg.AdminLabel) {
		return "", ErrInvalidSlug
	}
	return s, nil
}
