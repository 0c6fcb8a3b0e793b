package tenancy

import (
	"net"
	"slices"
	"strings"
)

// HostConfig names the reserved pieces of the URL surface.
type HostConfig struct {
	RootDomain     string // e.g. delliapp.com.br
	AdminLabel     string // e.g. app, giving app.delliapp.com.br
	PrivilegedRole string // platform role allowed into admin mode
}

// DefaultHostConfig matches production.
func DefaultHostConfig() HostConfig {
	return HostConfig{RootDomain: "delliapp.com.br", AdminLabel: "app", PrivilegedRole: "admin"}
}

// HostInfo is the outcome of parsing a request host.
type HostInfo struct {
	Subdomain   string `json:"subdomain,omitempty"`
	IsAdminMode bool   `json:"is_admin_mode"`
	// IsAdminHost is set when the host is the reserved admin host, whatever the role.
	IsAdminHost bool `json:"is_admin_host"`
	IsLoopback  bool `json:"is_loopback"`
}

// HasSubdomain reports whether a tenant subdomain was found.
func (h HostInfo) HasSubdomain() bool { return h.Subdomain != "" }

var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// ParseHost maps a hostname, the optional `client` query parameter and the caller's
// platform role to a subdomain and admin-mode flag. Rules are applied in order:
// loopback, reserved admin host, tenant host, anything else.
func ParseHost(hostname, clientParam, role string, cfg HostConfig) HostInfo {
	host := normalizeHost(hostname)
	privileged := role != "" && role == cfg.PrivilegedRole

	if loopbackHosts[host] {
		if c := strings.ToLower(strings.TrimSpace(clientParam)); c != "" {
			return HostInfo{Subdomain: c, IsLoopback: true}
		}
		return HostInfo{IsAdminMode: privileged, IsLoopback: true}
	}

	labels := strings.Split(host, ".")
	root := strings.Split(strings.ToLower(cfg.RootDomain), ".")
	if len(labels) != len(root)+1 || !slices.Equal(labels[1:], root) || labels[0] == "" {
		return HostInfo{}
	}
	if labels[0] == strings.ToLower(cfg.AdminLabel) {
		return HostInfo{IsAdminMode: privileged, IsAdminHost: true}
	}
	return HostInfo{Subdomain: labels[0]}
}

func normalizeHost(hostname string) string {
	h := strings.ToLower(strings.TrimSpace(hostname))
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	h = strings.TrimPrefix(strings.TrimSuffix(h, "]"), "[")
	return strings.TrimSuffix(h, ".")
}

