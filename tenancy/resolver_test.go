package tenancy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"delliapp/metrics"
	"delliapp/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFinder struct {
	mu    sync.Mutex
	teams map[string]*models.Team
	err   error
	calls int
	block map[string]chan struct{}
}

func (f *fakeFinder) FindBySlug(ctx context.Context, slug string) (*models.Team, error) {
	f.mu.Lock()
	f.calls++
	wait := f.block[slug]
	f.mu.Unlock()
	if wait != nil {
		<-wait
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.teams[slug], nil
}

type fakeRLS struct {
	set []string
	err error
}

func (f *fakeRLS) SetCurrentTeam(_ context.Context, teamID string) error {
	f.set = append(f.set, teamID)
	return f.err
}

func team(id, slug string, active bool) *models.Team {
	return &models.Team{Base: models.Base{ID: id}, Slug: slug, Name: slug, IsActive: active}
}

func TestResolve_SkipsWithoutSubdomainOrInAdminMode(t *testing.T) {
	f := &fakeFinder{}
	r := NewResolver(f, nil, zap.NewNop(), nil)

	got, err := r.Resolve(context.Background(), HostInfo{IsAdminMode: true, IsAdminHost: true})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.Resolve(context.Background(), HostInfo{})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, f.calls)
}

func TestResolve_Success_SetsRLS(t *testing.T) {
	f := &fakeFinder{teams: map[string]*models.Team{"loja1": team("t1", "loja1", true)}}
	rls := &fakeRLS{}
	m := metrics.New(prometheus.NewRegistry())
	r := NewResolver(f, rls, zap.NewNop(), m)

	got, err := r.Resolve(context.Background(), HostInfo{Subdomain: "loja1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, []string{"t1"}, rls.set)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TenantResolutions.WithLabelValues("ok")))
}

func TestResolve_RLSFailureIsNonFatal(t *testing.T) {
	f := &fakeFinder{teams: map[string]*models.Team{"loja1": team("t1", "loja1", true)}}
	m := metrics.New(prometheus.NewRegistry())
	r := NewResolver(f, &fakeRLS{err: errors.New("rpc down")}, zap.NewNop(), m)

	got, err := r.Resolve(context.Background(), HostInfo{Subdomain: "loja1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RLSFailures))
}

func TestResolve_NotFoundAndInactive(t *testing.T) {
	f := &fakeFinder{teams: map[string]*models.Team{"off": team("t2", "off", false)}}
	rls := &fakeRLS{}
	r := NewResolver(f, rls, zap.NewNop(), nil)

	for _, slug := range []string{"missing", "off"} {
		got, err := r.Resolve(context.Background(), HostInfo{Subdomain: slug})
		assert.Nil(t, got)
		require.ErrorIs(t, err, ErrTenantNotFound)
		var re *ResolveError
		require.True(t, errors.As(err, &re))
		assert.Contains(t, re.Message(), slug)
	}
	assert.Empty(t, rls.set)
}

func TestResolve_LookupFailureIsGeneric(t *testing.T) {
	cause := errors.New("connection refused")
	r := NewResolver(&fakeFinder{err: cause}, nil, zap.NewNop(), nil)

	got, err := r.Resolve(context.Background(), HostInfo{Subdomain: "loja1"})
	assert.Nil(t, got)
	require.ErrorIs(t, err, ErrTenantLookup)
	require.ErrorIs(t, err, cause)
	var re *ResolveError
	require.True(t, errors.As(err, &re))
	assert.NotContains(t, re.Message(), "loja1")
}

func TestResolveTracked_StaleResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	f := &fakeFinder{
		teams: map[string]*models.Team{
			"old": team("t-old", "old", true),
			"new": team("t-new", "new", true),
		},
		block: map[string]chan struct{}{"old": release},
	}
	r := NewResolver(f, nil, zap.NewNop(), nil)
	tr := &Tracker{}

	staleDone := make(chan bool)
	go func() {
		_, applied := r.ResolveTracked(context.Background(), tr, HostInfo{Subdomain: "old"})
		staleDone <- applied
	}()

	// wait until the slow lookup has taken its sequence number
	require.Eventually(t, func() bool { return tr.Current().Loading }, 2*time.Second, 5*time.Millisecond)

	res, applied := r.ResolveTracked(context.Background(), tr, HostInfo{Subdomain: "new"})
	require.True(t, applied)
	assert.Equal(t, "t-new", res.Team.ID)

	close(release)
	assert.False(t, <-staleDone)
	assert.Equal(t, "t-new", tr.TeamID())
	assert.False(t, tr.Current().Loading)
}

func TestTracker_ClearInvalidatesInFlight(t *testing.T) {
	tr := &Tracker{}
	seq := tr.Begin()
	tr.Clear()
	assert.False(t, tr.Commit(seq, team("t1", "a", true), nil))
	assert.Equal(t, "", tr.TeamID())
}
