package jsonrpc_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/jsonrpc"
	"github.com/blockberries/didrpc/server"
	didrpctest "github.com/blockberries/didrpc/testing"
	"github.com/blockberries/didrpc/types"
)

func startHandler(t *testing.T, q didrpc.Querier) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(jsonrpc.NewHandler(q, nil))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestJSONRPC_Compliance(t *testing.T) {
	didrpctest.RunComplianceSuite(t, func(t *testing.T, ledger didrpc.Ledger) didrpc.Querier {
		ts := startHandler(t, server.New(ledger))
		client := jsonrpc.NewClient(ts.URL, ts.Client())
		t.Cleanup(func() { client.Close() })
		return client
	})
}

func TestJSONRPC_ScenarioWireFormat(t *testing.T) {
	ledger, block10, block200 := didrpctest.Scenario()
	ts := startHandler(t, server.New(ledger))

	account := didrpctest.ScenarioAccount.String()
	name := types.Bytes("email").String()

	status, body := post(t, ts.URL, `{"jsonrpc":"2.0","id":1,"method":"did_readAttribute","params":["`+account+`","`+name+`","`+block200.String()+`"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"name":"0x656d61696c","value":"0x6140622e636f6d","validity":100,"created":50}}`, body)

	status, body = post(t, ts.URL, `{"jsonrpc":"2.0","id":2,"method":"did_readAttribute","params":["`+account+`","`+name+`","`+block10.String()+`"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"result":null}`, body)

	// Omitted and explicit-null snapshot both resolve to best.
	_, body = post(t, ts.URL, `{"jsonrpc":"2.0","id":3,"method":"did_readAttribute","params":["`+account+`","`+name+`"]}`)
	assert.Contains(t, body, `"validity":100`)
	_, body = post(t, ts.URL, `{"jsonrpc":"2.0","id":"x","method":"did_readAttribute","params":["`+account+`","`+name+`",null]}`)
	assert.Contains(t, body, `"id":"x"`)
	assert.Contains(t, body, `"validity":100`)

	ledger.Fail(errors.New("runtime forced to fail"))
	_, body = post(t, ts.URL, `{"jsonrpc":"2.0","id":4,"method":"did_readAttribute","params":["`+account+`","`+name+`","`+block200.String()+`"]}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":4,"error":{"code":1,"message":"Unable to get value.","data":"runtime forced to fail"}}`, body)
}

func TestJSONRPC_TransportErrors(t *testing.T) {
	ts := startHandler(t, server.New(didrpctest.NewMemLedger()))
	account := types.AccountID{0x01}.String()

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "parse_error", body: `{not json`, code: jsonrpc.CodeParseError},
		{name: "batch", body: `[{"jsonrpc":"2.0","id":1,"method":"did_readAttribute"}]`, code: jsonrpc.CodeInvalidRequest},
		{name: "wrong_version", body: `{"jsonrpc":"1.0","id":1,"method":"did_readAttribute","params":[]}`, code: jsonrpc.CodeInvalidRequest},
		{name: "unknown_method", body: `{"jsonrpc":"2.0","id":1,"method":"did_writeAttribute","params":[]}`, code: jsonrpc.CodeMethodNotFound},
		{name: "params_not_array", body: `{"jsonrpc":"2.0","id":1,"method":"did_readAttribute","params":{}}`, code: jsonrpc.CodeInvalidParams},
		{name: "too_few_params", body: `{"jsonrpc":"2.0","id":1,"method":"did_readAttribute","params":["` + account + `"]}`, code: jsonrpc.CodeInvalidParams},
		{name: "bad_account", body: `{"jsonrpc":"2.0","id":1,"method":"did_readAttribute","params":["0x01","0x"]}`, code: jsonrpc.CodeInvalidParams},
		{name: "bad_name", body: `{"jsonrpc":"2.0","id":1,"method":"did_readAttribute","params":["` + account + `","email"]}`, code: jsonrpc.CodeInvalidParams},
		{name: "bad_at", body: `{"jsonrpc":"2.0","id":1,"method":"did_readAttribute","params":["` + account + `","0x","0x12"]}`, code: jsonrpc.CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, ts.URL, tt.body)
			assert.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, `"error"`)
			assert.Contains(t, body, `"code":`+strconv.Itoa(tt.code))
		})
	}
}

func TestJSONRPC_OnlyPost(t *testing.T) {
	ts := startHandler(t, server.New(didrpctest.NewMemLedger()))
	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestJSONRPC_ClientTransportError(t *testing.T) {
	// A handler that always answers with a reserved code.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`)
	}))
	defer ts.Close()

	client := jsonrpc.NewClient(ts.URL, ts.Client())
	_, err := client.ReadAttribute(context.Background(), types.AccountID{}, nil, types.Best())
	require.Error(t, err)

	_, isSvc := didrpc.IsServiceError(err)
	assert.False(t, isSvc, "reserved codes must not become service errors")

	var rpcErr *jsonrpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, int64(jsonrpc.CodeMethodNotFound), rpcErr.Code)
}

func TestJSONRPC_ClientHTTPStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	client := jsonrpc.NewClient(ts.URL, ts.Client())
	_, err := client.ReadAttribute(context.Background(), types.AccountID{}, nil, types.Best())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestJSONRPC_NullSnapshotResolvesToBest(t *testing.T) {
	ledger, _, _ := didrpctest.Scenario()
	ts := startHandler(t, server.New(ledger))

	account := didrpctest.ScenarioAccount.String()
	name := types.Bytes("email").String()

	for _, at := range []string{`null`, ` null `} {
		status, body := post(t, ts.URL, `{"jsonrpc":"2.0","id":7,"method":"did_readAttribute","params":["`+account+`","`+name+`",`+at+`]}`)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":{"name":"0x656d61696c","value":"0x6140622e636f6d","validity":100,"created":50}}`, body)
	}

	// Advancing the head moves the answer for a null snapshot.
	ledger.Remove(didrpctest.ScenarioAccount, []byte("email"))
	ledger.Seal()
	_, body := post(t, ts.URL, `{"jsonrpc":"2.0","id":8,"method":"did_readAttribute","params":["`+account+`","`+name+`",null]}`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":8,"result":null}`, body)
}

func TestJSONRPC_NotificationGetsNoReply(t *testing.T) {
	ledger := &didrpctest.MockLedger{}
	ts := startHandler(t, server.New(ledger))
	account := types.AccountID{0x01}.String()

	for _, body := range []string{
		`{"jsonrpc":"2.0","method":"did_readAttribute","params":["` + account + `","0x"]}`,
		`{"jsonrpc":"2.0","method":"did_unknown","params":[]}`,
	} {
		status, reply := post(t, ts.URL, body)
		assert.Equal(t, http.StatusNoContent, status)
		assert.Empty(t, reply)
	}
	assert.Zero(t, ledger.ReadAttributeCalls.Load())

	// An explicit null id is a request, not a notification.
	status, reply := post(t, ts.URL, `{"jsonrpc":"2.0","id":null,"method":"did_readAttribute","params":["`+account+`","0x"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"result":null}`, reply)
}
