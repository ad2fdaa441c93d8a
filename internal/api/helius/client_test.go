package helius

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

// newRPCServer answers each JSON-RPC method with the canned result JSON from
// results and records the last request it saw.
func newRPCServer(t *testing.T, results map[string]string) (*httptest.Server, *rpcRequest) {
	t.Helper()
	var last rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := struct {
			JSONRPC string          `json:"jsonrpc"`
			ID      uint64          `json:"id"`
			Method  string          `json:"method"`
			Params  json.RawMessage `json:"params"`
		}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		last = rpcRequest{JSONRPC: body.JSONRPC, ID: body.ID, Method: body.Method, Params: body.Params}

		result, ok := results[body.Method]
		if !ok {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
	return server, &last
}

func TestLargestHoldersPreservesOrder(t *testing.T) {
	server, last := newRPCServer(t, map[string]string{
		"getTokenLargestAccounts": `{"value": [
			{"address": "HolderA", "uiAmount": 500000.0},
			{"address": "HolderB", "uiAmount": 120000.5},
			{"address": "HolderC", "uiAmount": 99.0}
		]}`,
	})
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})
	holders, err := client.LargestHolders(context.Background(), mint)
	require.NoError(t, err)

	assert.Equal(t, "getTokenLargestAccounts", last.Method)
	require.Len(t, holders, 3)
	assert.Equal(t, "HolderA", holders[0].Address)
	assert.Equal(t, 500000.0, holders[0].Balance)
	assert.Equal(t, "HolderC", holders[2].Address)
}

func TestTokenSupply(t *testing.T) {
	server, _ := newRPCServer(t, map[string]string{
		"getTokenSupply": `{"value": {"uiAmount": 1000000000.0, "decimals": 6}}`,
	})
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})
	supply, err := client.TokenSupply(context.Background(), mint)
	require.NoError(t, err)

	assert.Equal(t, 1000000000.0, supply)
}

func TestTokenCreatorPrefersVerifiedCreator(t *testing.T) {
	server, last := newRPCServer(t, map[string]string{
		"getAsset": `{
			"authorities": [{"address": "AuthorityX"}],
			"creators": [
				{"address": "UnverifiedDev", "verified": false},
				{"address": "VerifiedDev", "verified": true}
			]
		}`,
	})
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})
	creator, err := client.TokenCreator(context.Background(), mint)
	require.NoError(t, err)

	assert.Equal(t, "VerifiedDev", creator)

	// getAsset takes object params, not a positional list.
	var params map[string]interface{}
	require.NoError(t, json.Unmarshal(last.Params.(json.RawMessage), &params))
	assert.Equal(t, mint, params["id"])
}

func TestTokenCreatorFallsBackToAuthority(t *testing.T) {
	server, _ := newRPCServer(t, map[string]string{
		"getAsset": `{"authorities": [{"address": "AuthorityX"}], "creators": []}`,
	})
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})
	creator, err := client.TokenCreator(context.Background(), mint)
	require.NoError(t, err)

	assert.Equal(t, "AuthorityX", creator)
}

func TestRPCErrorSurfaces(t *testing.T) {
	server, _ := newRPCServer(t, map[string]string{})
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})
	_, err := client.TokenSupply(context.Background(), mint)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Method not found")
}

func TestRequestIDsIncrease(t *testing.T) {
	server, last := newRPCServer(t, map[string]string{
		"getTokenSupply": `{"value": {"uiAmount": 1.0}}`,
	})
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})
	_, err := client.TokenSupply(context.Background(), mint)
	require.NoError(t, err)
	first := last.ID
	_, err = client.TokenSupply(context.Background(), mint)
	require.NoError(t, err)

	assert.Greater(t, last.ID, first)
}
