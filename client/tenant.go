package client

import (
	"context"
	"errors"
	"net/url"

	"delliapp/models"
	"delliapp/tenancy"

	"go.uber.org/zap"
)

// FindBySlug looks a team up through the API. Unknown and inactive teams are (nil, nil).
func (c *Client) FindBySlug(ctx context.Context, slug string) (*models.Team, error) {
	var resp struct {
		Team models.Team `json:"team"`
	}
	err := check(c.r(ctx).SetResult(&resp).Get("/api/teams/" + url.PathEscape(slug)))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp.Team, nil
}

// SetCurrentTeam calls the set_current_team_id session RPC.
func (c *Client) SetCurrentTeam(ctx context.Context, teamID string) error {
	return check(c.r(ctx).
		SetBody(map[string]string{"team_id": teamID}).
		Post("/api/rpc/set_current_team_id"))
}

// TenantResolver resolves the restaurant for a storefront host and keeps the latest
// result. Results of superseded resolutions are dropped.
type TenantResolver struct {
	resolver    *tenancy.Resolver
	tracker     *tenancy.Tracker
	cfg         tenancy.HostConfig
	host        string
	clientParam string
	role        func() string
}

// NewTenantResolver binds a resolver to host and the optional client query value.
// role reports the current platform role.
func NewTenantResolver(c *Client, cfg tenancy.HostConfig, host, clientParam string, role func() string, log *zap.Logger) *TenantResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &TenantResolver{
		resolver:    tenancy.NewResolver(c, c, log, nil),
		tracker:     &tenancy.Tracker{},
		cfg:         cfg,
		host:        host,
		clientParam: clientParam,
		role:        role,
	}
}

func (t *TenantResolver) HostInfo() tenancy.HostInfo {
	return tenancy.ParseHost(t.host, t.clientParam, t.role(), t.cfg)
}

// Refresh re-runs resolution. The bool is false when a newer Refresh superseded it.
func (t *TenantResolver) Refresh(ctx context.Context) (tenancy.Resolution, bool) {
	return t.resolver.ResolveTracked(ctx, t.tracker, t.HostInfo())
}

func (t *TenantResolver) Current() tenancy.Resolution { return t.tracker.Current() }

// TeamID is empty until a team is resolved.
func (t *TenantResolver) TeamID() string { return t.tracker.TeamID() }

// Reset forgets the current team, e.g. on sign-out.
func (t *TenantResolver) Reset() { t.tracker.Clear() }
