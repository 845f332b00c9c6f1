package coordinator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tokensmith/gateway"
	"github.com/vitwit/tokensmith/llm"
	"github.com/vitwit/tokensmith/pricing"
	"github.com/vitwit/tokensmith/types"
)

type cannedModel struct {
	response string
	key      string
	prompts  []string
}

func (m *cannedModel) Ready() error {
	if m.key == "" {
		return types.ErrMissingCredential
	}
	return nil
}

func (m *cannedModel) Generate(_ context.Context, prompt string, _ llm.Options) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, nil
}

func newGatewayServer(t *testing.T, model llm.Model) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := types.DefaultConfig()
	cfg.Payment.DefaultNetwork = types.NetworkSolanaDevnet
	devnet := cfg.Payment.Networks[types.NetworkSolanaDevnet]
	devnet.Treasury = solTreasury
	cfg.Payment.Networks[types.NetworkSolanaDevnet] = devnet

	svc := gateway.NewService(model, pricing.NewOracle(cfg.Payment), cfg)
	srv := httptest.NewServer(gateway.NewRouter(gateway.NewHandler(svc, nil)))
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEndSolanaPayment(t *testing.T) {
	model := &cannedModel{
		key:      "test-key",
		response: "```json\n{\"solidityCode\": \"// SPDX-License-Identifier: MIT\\npragma solidity ^0.8.20;\\ncontract TestToken {}\"}\n```",
	}
	srv := newGatewayServer(t, model)
	client := NewHTTPGateway(srv.URL + "/")

	session := newFakeSession(solPayer)
	var transitions []Transition
	c := New(session, client, client, WithObserver(func(tr Transition) { transitions = append(transitions, tr) }))

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	require.Equal(t, StateSuccess, out.State, out.Message)

	require.Len(t, session.sent, 1)
	assert.Equal(t, "370000000", session.sent[0].String())
	assert.Equal(t, solTreasury, session.sentTo[0])

	assert.Equal(t, "TestToken.sol", out.FileName)
	assert.Contains(t, out.SolidityCode, "contract TestToken")
	assert.NotContains(t, out.SolidityCode, "```")

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Test Token")
	assert.Contains(t, model.prompts[0], "TST")
	assert.Equal(t, StateIdle, transitions[len(transitions)-1].To)
}

func TestEndToEndMissingKey(t *testing.T) {
	srv := newGatewayServer(t, &cannedModel{})
	client := NewHTTPGateway(srv.URL)

	c := New(newFakeSession(solPayer), client, client)
	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Equal(t, StateGenerationFailed, out.State)
	assert.Equal(t, types.ErrCodeConfigError, out.Code)
	assert.Equal(t, "Failed to generate smart contract. Reason: Server configuration error: Missing API key.", out.Message)
}

func TestHTTPGatewayQuote(t *testing.T) {
	srv := newGatewayServer(t, &cannedModel{key: "k"})
	client := NewHTTPGateway(srv.URL)

	q, err := client.Quote(context.Background(), types.NetworkSolanaDevnet)
	require.NoError(t, err)
	assert.Equal(t, "0.37", q.Standard.String())
	assert.Equal(t, "0.62", q.Liquidity.String())
	assert.Equal(t, "SOL", q.Currency)
	assert.Equal(t, solTreasury, q.Treasury)

	admin, err := client.QuoteFor(context.Background(), types.NetworkSolanaDevnet, solTreasury)
	require.NoError(t, err)
	assert.True(t, admin.Standard.IsZero())

	_, err = client.Quote(context.Background(), types.NetworkEthereum)
	assert.ErrorIs(t, err, types.ErrNoPriceData)
}

func TestHTTPGatewayErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    types.ErrorCode
		message string
	}{
		{"server message", http.StatusBadRequest, `{"error":"Invalid request body.","code":"InvalidRequest"}`, types.ErrCodeInvalidRequest, "Invalid request body."},
		{"no body", http.StatusServiceUnavailable, ``, types.ErrCodeUnknown, "Server responded with status: 503"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, types.ErrCodeUpstreamFormatError, "Server responded with status: 502"},
		{"empty code", http.StatusOK, `{"solidityCode":""}`, types.ErrCodeUpstreamFormatError, "Received an invalid response from the server."},
		{"not json", http.StatusOK, `solidity`, types.ErrCodeUpstreamFormatError, "Received an invalid response from the server."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/generate-token", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPGateway(srv.URL).Generate(context.Background(), &types.GenerationRequest{TokenType: types.TokenTypeStandard})
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestHTTPGatewaySendsRequest(t *testing.T) {
	var got types.GenerationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(types.GenerationResult{SolidityCode: "contract A {}"})
	}))
	defer srv.Close()

	req := &types.GenerationRequest{
		TokenType: types.TokenTypeStandard,
		FormData:  &types.FormData{Name: "A", Symbol: "A", Decimals: "18", TotalSupply: "1"},
		Payment:   &types.PaymentProof{Network: types.NetworkSolanaDevnet, Payer: solPayer, TxHash: "sig"},
	}
	code, err := NewHTTPGateway(srv.URL).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "contract A {}", code)
	assert.Equal(t, *req.FormData, *got.FormData)
	assert.Equal(t, "sig", got.Payment.TxHash)
}
