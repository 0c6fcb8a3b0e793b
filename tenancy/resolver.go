package tenancy

import (
	"context"
	"errors"
	"fmt"

	"delliapp/metrics"
	"delliapp/models"

	"go.uber.org/zap"
)

var (
	ErrTenantNotFound = errors.New("tenant not found or inactive")
	ErrTenantLookup   = errors.New("tenant lookup failed")
)

// TeamFinder looks a team up by slug. A missing team is (nil, nil).
type TeamFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Team, error)
}

// RLSSetter records the current team for server-side row filtering.
// An empty teamID clears it.
type RLSSetter interface {
	SetCurrentTeam(ctx context.Context, teamID string) error
}

// ResolveError carries the user-visible message for a failed resolution.
type ResolveError struct {
	Slug  string
	Kind  error // ErrTenantNotFound or ErrTenantLookup
	Cause error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolve tenant %q: %v: %v", e.Slug, e.Kind, e.Cause)
	}
	return fmt.Sprintf("resolve tenant %q: %v", e.Slug, e.Kind)
}

func (e *ResolveError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Message is safe to show to the visitor.
func (e *ResolveError) Message() string {
	if errors.Is(e.Kind, ErrTenantNotFound) {
		return fmt.Sprintf("Restaurant %q was not found or is not active.", e.Slug)
	}
	return "We could not load this restaurant right now. Please try again."
}

// Resolver turns a parsed host into the current team.
type Resolver struct {
	teams   TeamFinder
	rls     RLSSetter
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewResolver builds a Resolver. rls and m may be nil.
func NewResolver(teams TeamFinder, rls RLSSetter, log *zap.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{teams: teams, rls: rls, log: log, metrics: m}
}

// Resolve fetches the team for info. Admin mode or a missing subdomain resolve to no
// team without any fetch. On success the team id is pushed to the RLS session; that
// call is best-effort and only logged on failure.
func (r *Resolver) Resolve(ctx context.Context, info HostInfo) (*models.Team, error) {
	if info.IsAdminMode || !info.HasSubdomain() {
		r.count("skipped")
		return nil, nil
	}

	team, err := r.teams.FindBySlug(ctx, info.Subdomain)
	if err != nil {
		r.count("error")
		r.log.Error("tenant lookup failed", zap.String("slug", info.Subdomain), zap.Error(err))
		return nil, &ResolveError{Slug: info.Subdomain, Kind: ErrTenantLookup, Cause: err}
	}
	if team == nil || !team.IsActive {
		r.count("not_found")
		r.log.Info("tenant not found", zap.String("slug", info.Subdomain))
		return nil, &ResolveError{Slug: info.Subdomain, Kind: ErrTenantNotFound}
	}

	if r.rls != nil {
		if err := r.rls.SetCurrentTeam(ctx, team.ID); err != nil {
			if r.metrics != nil {
				r.metrics.RLSFailures.Inc()
			}
			r.log.Warn("could not set current team for row-level security",
				zap.String("team_id", team.ID), zap.Error(err))
		}
	}
	r.count("ok")
	return team, nil
}

// ResolveTracked runs Resolve under a Tracker sequence number. The returned bool is
// false when a newer resolution was started meanwhile and this result was discarded.
func (r *Resolver) ResolveTracked(ctx context.Context, t *Tracker, info HostInfo) (Resolution, bool) {
	seq := t.Begin()
	team, err := r.Resolve(ctx, info)
	if !t.Commit(seq, team, err) {
		r.log.Debug("discarding stale tenant resolution", zap.Uint64("seq", seq))
		return t.Current(), false
	}
	return t.Current(), true
}

func (r *Resolver) count(result string) {
	if r.metrics != nil {
		r.metrics.TenantResolutions.WithLabelValues(result).Inc()
	}
}
