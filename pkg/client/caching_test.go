package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondernetwork/wiu-go/pkg/cache"
	"github.com/wondernetwork/wiu-go/pkg/client"
	"github.com/wondernetwork/wiu-go/pkg/client/mock"
)

func TestCachingClient_serversFetchedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	want := []client.Server{json.RawMessage(`"foo"`), json.RawMessage(`{"name":"bar"}`)}
	api.EXPECT().Servers(gomock.Any()).Return(want, nil).Times(1)

	c := client.NewCaching(api, cache.NewMemory(0))
	for i := 0; i < 3; i++ {
		got, err := c.Servers(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.JSONEq(t, `"foo"`, string(got[0]))
		assert.JSONEq(t, `{"name":"bar"}`, string(got[1]))
	}
}

func TestCachingClient_serversErrorNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		api.EXPECT().Servers(gomock.Any()).Return(nil, client.ErrTransport),
		api.EXPECT().Servers(gomock.Any()).Return([]client.Server{json.RawMessage(`"foo"`)}, nil),
	)

	c := client.NewCaching(api, cache.NewMemory(0))
	_, err := c.Servers(ctx)
	assert.ErrorIs(t, err, client.ErrTransport)

	got, err := c.Servers(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCachingClient_inProgressJobNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	running := client.JobResult{"response": map[string]any{"in_progress": true}}
	api.EXPECT().Retrieve(gomock.Any(), "1234").Return(running, nil).Times(2)

	c := client.NewCaching(api, cache.NewMemory(0))
	for i := 0; i < 2; i++ {
		job, err := c.Retrieve(ctx, "1234")
		require.NoError(t, err)
		assert.True(t, job.InProgress())
	}
}

func TestCachingClient_completedJobCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	api.EXPECT().Retrieve(gomock.Any(), "1234").Return(client.JobResult{"foo": "bar"}, nil).Times(1)
	api.EXPECT().Retrieve(gomock.Any(), "abcd").Return(client.JobResult{"baz": "qux"}, nil).Times(1)

	backend := cache.NewMemory(0)
	c := client.NewCaching(api, backend)
	for i := 0; i < 3; i++ {
		job, err := c.Retrieve(ctx, "1234")
		require.NoError(t, err)
		assert.Equal(t, client.JobResult{"foo": "bar"}, job)
	}

	job, err := c.Retrieve(ctx, "abcd")
	require.NoError(t, err)
	assert.Equal(t, client.JobResult{"baz": "qux"}, job)

	_, found, err := backend.Get(ctx, "wiu.job_1234")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCachingClient_submitPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	servers := []string{"denver"}
	tests := []string{"dig"}
	raw := []byte(`{"uri": "google.com"}`)
	api.EXPECT().Submit(gomock.Any(), "google.com", servers, tests, nil).Return("bizbaz", nil).Times(2)
	api.EXPECT().SubmitRaw(gomock.Any(), raw).Return("", &client.ValidationError{Message: "No valid servers requested"}).Times(1)

	c := client.NewCaching(api, cache.NewMemory(0))
	for i := 0; i < 2; i++ {
		jobID, err := c.Submit(ctx, "google.com", servers, tests, nil)
		require.NoError(t, err)
		assert.Equal(t, "bizbaz", jobID)
	}

	_, err := c.SubmitRaw(ctx, raw)
	var vErr *client.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCachingClient_negativeTTLDisablesCaching(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	api.EXPECT().Servers(gomock.Any()).Return([]client.Server{json.RawMessage(`"foo"`)}, nil).Times(2)
	api.EXPECT().Retrieve(gomock.Any(), "1234").Return(client.JobResult{"foo": "bar"}, nil).Times(2)

	c := client.NewCaching(api, cache.NewMemory(0), client.WithTTL(-time.Minute))
	for i := 0; i < 2; i++ {
		_, err := c.Servers(ctx)
		require.NoError(t, err)
		_, err = c.Retrieve(ctx, "1234")
		require.NoError(t, err)
	}
}

func TestCachingClient_expiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	api.EXPECT().Servers(gomock.Any()).Return([]client.Server{json.RawMessage(`"foo"`)}, nil).Times(2)

	c := client.NewCaching(api, cache.NewMemory(0), client.WithTTL(20*time.Millisecond))
	_, err := c.Servers(ctx)
	require.NoError(t, err)
	_, err = c.Servers(ctx)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	_, err = c.Servers(ctx)
	require.NoError(t, err)
}

// brokenCache fails every operation.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend unavailable")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend unavailable")
}

func TestCachingClient_backendFailureIsAMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	api.EXPECT().Servers(gomock.Any()).Return([]client.Server{json.RawMessage(`"foo"`)}, nil).Times(2)

	c := client.NewCaching(api, brokenCache{})
	for i := 0; i < 2; i++ {
		got, err := c.Servers(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
}

func TestCachingClient_undecodableEntryIsAMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)
	ctx := context.Background()

	backend := cache.NewMemory(0)
	require.NoError(t, backend.Set(ctx, "wiu.servers", []byte("not json"), time.Hour))
	api.EXPECT().Servers(gomock.Any()).Return([]client.Server{json.RawMessage(`"foo"`)}, nil).Times(1)

	c := client.NewCaching(api, backend)
	got, err := c.Servers(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// The fresh value replaced the bad entry.
	got, err = c.Servers(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
