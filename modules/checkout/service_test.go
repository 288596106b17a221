package checkout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence-scheduler-server/modules/common/config"
	"cadence-scheduler-server/modules/common/supabase"
)

// fakeNotifier records user-visible notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	readyURLs []string
	errors    []string
}

func (f *fakeNotifier) CheckoutReady(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readyURLs = append(f.readyURLs, url)
}

func (f *fakeNotifier) NotifyError(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, message)
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *fakeNotifier) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gw, err := supabase.New(&config.Config{
		SupabaseURL:        server.URL,
		SupabaseServiceKey: "test-key",
	})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	return NewService(gw, notifier), notifier
}

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		Schedule:    "daily",
		ChannelName: "My Channel",
		ChannelData: &ChannelData{
			ContentTypes: []string{"shorts"},
			Voice:        "narrator-1",
			TopicMode:    TopicModeAuto,
			Platform:     "youtube",
			AccountName:  "mychannel",
		},
	}
}

func TestCreateCheckoutSessionSuccess(t *testing.T) {
	service, notifier := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/create-checkout", r.URL.Path)
		w.Write([]byte(`{"url": "https://pay.example/abc"}`))
	})

	session, err := service.CreateCheckoutSession(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, "https://pay.example/abc", session.URL)
	require.Len(t, notifier.readyURLs, 1, "success must open the returned URL")
	assert.Equal(t, "https://pay.example/abc", notifier.readyURLs[0])
	assert.Empty(t, notifier.errors)
	assert.False(t, service.IsLoading())
}

func TestCreateCheckoutSessionMissingRedirect(t *testing.T) {
	service, notifier := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	session, err := service.CreateCheckoutSession(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRedirect))
	assert.Nil(t, session)

	assert.Empty(t, notifier.readyURLs)
	require.Len(t, notifier.errors, 1, "a missing redirect must surface a user-visible notification")
}

func TestCreateCheckoutSessionRemoteError(t *testing.T) {
	service, notifier := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message": "card declined"}`))
	})

	_, err := service.CreateCheckoutSession(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card declined", "the remote error message must be preserved")

	require.Len(t, notifier.errors, 1)
	assert.Contains(t, notifier.errors[0], "card declined")
}

func TestCreateCheckoutSessionValidation(t *testing.T) {
	service, notifier := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("validation failures must not reach the remote function")
	})

	tests := []struct {
		name string
		req  CheckoutRequest
	}{
		{"unknown schedule", CheckoutRequest{Schedule: "hourly", ChannelName: "c"}},
		{"empty channel name", CheckoutRequest{Schedule: "daily", ChannelName: ""}},
		{"manual topics without topics", CheckoutRequest{
			Schedule:    "daily",
			ChannelName: "c",
			ChannelData: &ChannelData{TopicMode: TopicModeManual},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateCheckoutSession(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}

	assert.Empty(t, notifier.errors)
}

func TestCreateCheckoutSessionBusy(t *testing.T) {
	release := make(chan struct{})
	firstEntered := make(chan struct{})

	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		close(firstEntered)
		<-release
		w.Write([]byte(`{"url": "https://pay.example/abc"}`))
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := service.CreateCheckoutSession(context.Background(), validRequest())
		assert.NoError(t, err)
	}()

	<-firstEntered
	assert.True(t, service.IsLoading())

	// Re-entry while the first call is pending is rejected.
	_, err := service.CreateCheckoutSession(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusy))

	close(release)
	wg.Wait()
	assert.False(t, service.IsLoading())
}
