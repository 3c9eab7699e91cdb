package panel

import (
	"context"
	"testing"

	"event-feedback-server/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForm(t *testing.T, backend *fakeBackend) *Form {
	t.Helper()
	p, _ := newTestPanel(t, backend)
	f := NewForm(p.Client)
	t.Cleanup(f.Close)
	return f
}

func fillValid(f *Form) {
	f.Name = "Ann"
	f.Email = "ann@x.com"
	f.EventName = "Demo Day"
	f.Division = "PR"
	f.Rating = "5"
}

func TestSubmitSuccessResetsFieldsAndShowsBanner(t *testing.T) {
	backend := newFakeBackend()
	f := newTestForm(t, backend)
	fillValid(f)

	require.NoError(t, f.Submit(context.Background()))

	assert.Empty(t, f.Name)
	assert.Empty(t, f.Email)
	assert.Empty(t, f.EventName)
	assert.Empty(t, f.Division)
	assert.Empty(t, f.Rating)

	banner := f.Banner()
	require.NotNil(t, banner)
	assert.Equal(t, BannerSuccess, banner.Kind)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.records, 1)
	for _, fb := range backend.records {
		assert.Equal(t, "Ann", fb.Name)
		assert.Equal(t, 5, fb.Rating)
	}
}

func TestSubmitWithoutRatingNeverHitsNetwork(t *testing.T) {
	backend := newFakeBackend()
	f := newTestForm(t, backend)
	fillValid(f)
	f.Rating = ""

	err := f.Submit(context.Background())
	require.Error(t, err)

	backend.mu.Lock()
	requests := backend.requests
	backend.mu.Unlock()
	assert.Zero(t, requests, "rejected client-side before any network call")

	banner := f.Banner()
	require.NotNil(t, banner)
	assert.Equal(t, BannerError, banner.Kind)
}

func TestSubmitWithMissingRequiredFieldRejectedLocally(t *testing.T) {
	backend := newFakeBackend()
	f := newTestForm(t, backend)
	fillValid(f)
	f.Email = "  "

	require.Error(t, f.Submit(context.Background()))
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Zero(t, backend.requests)
}

func TestSubmitRatingCoercedToValidInteger(t *testing.T) {
	backend := newFakeBackend()
	f := newTestForm(t, backend)
	fillValid(f)
	f.Rating = "6"

	require.Error(t, f.Submit(context.Background()))
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Zero(t, backend.requests)
}

func TestSubmitFailureKeepsFields(t *testing.T) {
	backend := newFakeBackend()
	f := newTestForm(t, backend)
	fillValid(f)
	f.Client = client.New("http://127.0.0.1:1", client.NewMemoryStore()) // nothing listening

	require.Error(t, f.Submit(context.Background()))
	assert.Equal(t, "Ann", f.Name)

	banner := f.Banner()
	require.NotNil(t, banner)
	assert.Equal(t, BannerError, banner.Kind)
	assert.Equal(t, "Failed to submit feedback", banner.Text)
}
