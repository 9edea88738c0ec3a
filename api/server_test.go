package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"prizepool/application"
	"prizepool/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedBlocks struct{ block application.Block }

func (f fixedBlocks) Current() application.Block { return f.block }

func newTestServer(t *testing.T, health map[string]HealthCheck) *httptest.Server {
	t.Helper()
	factory := testhelpers.NewMemoryUnitOfWorkFactory()
	dispatcher := application.NewDispatcher(factory, fixedBlocks{application.Block{Height: 1, Time: 6}}, "secret1pool", nil)
	ts := httptest.NewServer(NewServer(dispatcher, ":0", health).Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, JSONContentType, bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func initRequest() application.ExecuteRequest {
	return application.ExecuteRequest{
		Sender: "secret1admin",
		Msg: application.HandleMsg{Init: &application.InitMsg{
			Token:                    application.ContractMsg{Address: "secret1token", CodeHash: "hash"},
			StakingContract:          application.ContractMsg{Address: "secret1staking", CodeHash: "hash"},
			ViewingKey:               "vk",
			PrngSeed:                 base64.StdEncoding.EncodeToString([]byte("seed")),
			TriggererSharePercentage: 1,
		}},
	}
}

func TestServer_ExecuteAndQuery(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	resp := post(t, ts, "/execute", initRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answer := decode[application.HandleAnswer](t, resp)
	assert.Equal(t, "init", answer.Type)
	assert.Equal(t, application.StatusSuccess, answer.Status)

	resp = post(t, ts, "/query", application.QueryRequest{Msg: application.QueryMsg{TotalDeposits: &application.Empty{}}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deposits := decode[application.QueryAnswer](t, resp)
	require.NotNil(t, deposits.Amount)
	assert.Equal(t, "0", *deposits.Amount)

	lottery, err := http.Get(ts.URL + "/lottery")
	require.NoError(t, err)
	defer lottery.Body.Close()
	require.Equal(t, http.StatusOK, lottery.StatusCode)
	info := decode[application.LotteryInfoAnswer](t, lottery)
	assert.Equal(t, uint64(7), info.StartTime)
	assert.Equal(t, uint64(607), info.EndTime)
}

func TestServer_ErrorStatuses(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, post(t, ts, "/execute", initRequest()).StatusCode)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		kind   string
	}{
		{"unknown field", "/execute", map[string]any{"bogus": true}, http.StatusBadRequest, "invalid_input"},
		{"no action", "/execute", application.ExecuteRequest{Sender: "x"}, http.StatusBadRequest, "invalid_input"},
		{"not admin", "/execute", application.ExecuteRequest{
			Sender: "secret1stranger",
			Msg:    application.HandleMsg{StopContract: &application.Empty{}},
		}, http.StatusForbidden, "unauthorized"},
		{"already initialized", "/execute", initRequest(), http.StatusConflict, "precondition"},
		{"empty query", "/query", application.QueryRequest{}, http.StatusBadRequest, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[ErrorBody](t, resp)
			assert.Equal(t, tt.kind, string(body.Kind))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	healthy := newTestServer(t, map[string]HealthCheck{"nats": func() error { return nil }})
	resp, err := http.Get(healthy.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[HealthStatus](t, resp).Status)

	degraded := newTestServer(t, map[string]HealthCheck{"nats": func() error { return errors.New("disconnected") }})
	resp2, err := http.Get(degraded.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
	status := decode[HealthStatus](t, resp2)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "disconnected", status.Checks["nats"])
}

func TestServer_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/execute")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
