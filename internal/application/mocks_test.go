package application_test

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// --- Mock implementations ---

type mockTokens struct {
	mu          sync.Mutex
	token       string
	err         error
	invalidated int
}

func (m *mockTokens) EnsureValidToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.err
}

func (m *mockTokens) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
	return nil
}

func (m *mockTokens) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type mockStrava struct {
	mu         sync.Mutex
	activities []model.Activity
	err        error
	calls      int
	perPage    int
	token      string
	spanCtx    trace.SpanContext
}

func (m *mockStrava) ListActivities(ctx context.Context, accessToken string, perPage int) ([]model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.spanCtx = trace.SpanContextFromContext(ctx)
	m.perPage = perPage
	m.token = accessToken
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Activity, len(m.activities))
	copy(out, m.activities)
	return out, nil
}

func (m *mockStrava) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type mockGeocoder struct {
	mu    sync.Mutex
	names map[model.LatLng]string
	errs  map[model.LatLng]error
	calls int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, p model.LatLng) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.errs[p]; err != nil {
		return "", err
	}
	return m.names[p], nil
}

type mockLocations struct {
	mu    sync.Mutex
	names map[int64]string
}

func newMockLocations() *mockLocations {
	return &mockLocations{names: make(map[int64]string)}
}

func (m *mockLocations) Get(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.names[id], nil
}

func (m *mockLocations) Set(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[id] = name
	return nil
}

func (m *mockLocations) Prune(_ context.Context, keep []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make(map[int64]string, len(keep))
	for _, id := range keep {
		if name, ok := m.names[id]; ok {
			kept[id] = name
		}
	}
	m.names = kept
	return nil
}

type mockOptions struct {
	mu   sync.Mutex
	opts *model.Options
}

func (m *mockOptions) Get(_ context.Context) (*model.Options, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opts == nil {
		return nil, nil
	}
	o := *m.opts
	return &o, nil
}

func (m *mockOptions) Set(_ context.Context, opts model.Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = &opts
	return nil
}

type mockPublisher struct {
	mu        sync.Mutex
	states    map[string]model.SensorState
	publishes []string
	removed   []string
	notified  []model.Notification
	dismissed []string
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{states: make(map[string]model.SensorState)}
}

func (m *mockPublisher) Publish(_ context.Context, st model.SensorState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.EntityID] = st
	m.publishes = append(m.publishes, st.EntityID)
	return nil
}

func (m *mockPublisher) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockPublisher) Notify(_ context.Context, n model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, n)
	return nil
}

func (m *mockPublisher) Dismiss(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = append(m.dismissed, id)
	return nil
}

func (m *mockPublisher) state(id string) (model.SensorState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[id]
	return st, ok
}

// resetCalls clears the recorded calls but keeps published states.
func (m *mockPublisher) resetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishes = nil
	m.removed = nil
}

// mockTokenStore and mockAuth back TokenManager tests.
type mockTokenStore struct {
	creds *model.Credentials
	saves int
}

func (m *mockTokenStore) Load(_ context.Context) (*model.Credentials, error) {
	if m.creds == nil {
		return nil, nil
	}
	c := *m.creds
	return &c, nil
}

func (m *mockTokenStore) Save(_ context.Context, c model.Credentials) error {
	m.creds = &c
	m.saves++
	return nil
}

func (m *mockTokenStore) Clear(_ context.Context) error {
	m.creds = nil
	return nil
}

type mockAuth struct {
	refreshed   *model.Credentials
	refreshErr  error
	refreshes   int
	exchanged   *model.Credentials
	exchangeErr error
}

func (m *mockAuth) AuthCodeURL(state string) string {
	return "https://strava.test/authorize?state=" + state
}

func (m *mockAuth) Exchange(_ context.Context, _ string) (*model.Credentials, error) {
	return m.exchanged, m.exchangeErr
}

func (m *mockAuth) Refresh(_ context.Context, _ model.Credentials) (*model.Credentials, error) {
	m.refreshes++
	return m.refreshed, m.refreshErr
}
