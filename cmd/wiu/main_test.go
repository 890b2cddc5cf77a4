package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wondernetwork/wiu-go/pkg/client"
	"github.com/wondernetwork/wiu-go/pkg/client/mock"
)

func TestParseOptions(t *testing.T) {
	got, err := parseOptions([]string{
		"timeout=60",
		"expire_after=3 days",
		`dig={"nameserver": "localhost"}`,
		"follow=true",
		"query=a=b",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"timeout":      float64(60),
		"expire_after": "3 days",
		"dig":          map[string]any{"nameserver": "localhost"},
		"follow":       true,
		"query":        "a=b",
	}, got)

	for _, bad := range []string{"timeout", "=60"} {
		_, err := parseOptions([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestReadRaw_stdin(t *testing.T) {
	raw, err := readRaw("-", strings.NewReader(`{"uri": "google.com"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"uri": "google.com"}`, string(raw))

	_, err = readRaw("/nonexistent/request.json", nil)
	assert.Error(t, err)
}

func inProgress() client.JobResult {
	return client.JobResult{"response": map[string]any{"in_progress": true}}
}

func TestWaitForJob_finishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)

	done := client.JobResult{"response": map[string]any{"in_progress": false, "foo": "bar"}}
	gomock.InOrder(
		api.EXPECT().Retrieve(gomock.Any(), "1234").Return(inProgress(), nil).Times(2),
		api.EXPECT().Retrieve(gomock.Any(), "1234").Return(done, nil),
	)

	job, err := waitForJob(context.Background(), api, "1234", time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, done, job)
}

func TestWaitForJob_timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)

	api.EXPECT().Retrieve(gomock.Any(), "1234").Return(inProgress(), nil).MinTimes(1)

	job, err := waitForJob(context.Background(), api, "1234", 30*time.Millisecond, 5*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still in progress")
	assert.True(t, job.InProgress())
}

func TestWaitForJob_retrieveError(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPI(ctrl)

	api.EXPECT().Retrieve(gomock.Any(), "1234").Return(nil, client.ErrTransport)

	_, err := waitForJob(context.Background(), api, "1234", time.Second, time.Millisecond)
	assert.ErrorIs(t, err, client.ErrTransport)
}

func TestNewAPI_cacheSelection(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	base := settings{Endpoint: client.DefaultEndpoint, ID: "1234", Token: "4321", CacheTTL: time.Minute}

	s := base
	api, closeAPI, err := newAPI(ctx, s, zap.NewNop())
	require.NoError(t, err)
	closeAPI()
	assert.IsType(t, &client.Client{}, api)

	s.Cache = "memory"
	api, closeAPI, err = newAPI(ctx, s, zap.NewNop())
	require.NoError(t, err)
	closeAPI()
	assert.IsType(t, &client.CachingClient{}, api)

	s.Cache = "redis"
	s.RedisURL = "redis://" + mr.Addr() + "/0"
	api, closeAPI, err = newAPI(ctx, s, zap.NewNop())
	require.NoError(t, err)
	closeAPI()
	assert.IsType(t, &client.CachingClient{}, api)

	s.Cache = "memcached"
	_, _, err = newAPI(ctx, s, zap.NewNop())
	assert.ErrorContains(t, err, "unknown cache")
}

func TestNewAPI_badCredentials(t *testing.T) {
	_, _, err := newAPI(context.Background(), settings{Endpoint: client.DefaultEndpoint}, zap.NewNop())
	assert.ErrorIs(t, err, client.ErrCredentials)
}

func TestPrintServers(t *testing.T) {
	servers := []client.Server{json.RawMessage(`"denver"`), json.RawMessage(`{"name":"london"}`)}

	var text bytes.Buffer
	require.NoError(t, printServers(&text, servers, "text"))
	assert.Equal(t, "denver\n{\"name\":\"london\"}\n", text.String())

	var out bytes.Buffer
	require.NoError(t, printServers(&out, servers, "json"))
	assert.JSONEq(t, `["denver", {"name": "london"}]`, out.String())
}
