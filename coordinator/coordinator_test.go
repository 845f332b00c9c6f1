package coordinator

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/wallet"
)

const (
	solTreasury = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	solPayer    = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
)

type fakeSession struct {
	network types.FeeNetwork
	family  types.ChainFamily
	address string
	sendErr error
	signErr error
	block   chan struct{}
	mu      sync.Mutex
	sent    []*big.Int
	sentTo  []string
	signed  [][]byte
}

var (
	_ wallet.Session       = (*fakeSession)(nil)
	_ wallet.MessageSigner = (*fakeSession)(nil)
)

func newFakeSession(address string) *fakeSession {
	return &fakeSession{network: types.NetworkSolanaDevnet, family: types.ChainSolana, address: address}
}

func (f *fakeSession) Family() types.ChainFamily { return f.family }
func (f *fakeSession) Network() types.FeeNetwork { return f.network }
func (f *fakeSession) IsConnected() bool         { return f.address != "" }
func (f *fakeSession) Address() string           { return f.address }

func (f *fakeSession) SendNativeTransfer(_ context.Context, amount *big.Int, to string) (*types.Confirmation, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, amount)
	f.sentTo = append(f.sentTo, to)
	return &types.Confirmation{
		TxHash:  "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
		Network: f.network,
		From:    f.address,
		To:      to,
		Amount:  amount.String(),
	}, nil
}

func (f *fakeSession) SignMessage(_ context.Context, msg []byte) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signed = append(f.signed, msg)
	return "waiver-signature", nil
}

type staticQuotes struct {
	quote types.FeeQuote
	err   error
	calls int
}

func (s *staticQuotes) Quote(context.Context, types.FeeNetwork) (types.FeeQuote, error) {
	s.calls++
	return s.quote, s.err
}

type stubGenerator struct {
	code string
	err  error
	reqs []*types.GenerationRequest
}

func (g *stubGenerator) Generate(_ context.Context, req *types.GenerationRequest) (string, error) {
	g.reqs = append(g.reqs, req)
	return g.code, g.err
}

func solQuote() *staticQuotes {
	return &staticQuotes{quote: types.FeeQuote{
		Standard:  decimal.RequireFromString("0.37"),
		Liquidity: decimal.RequireFromString("0.62"),
		Currency:  "SOL",
		Network:   types.NetworkSolanaDevnet,
		Treasury:  solTreasury,
	}}
}

func testSubmission() Submission {
	return Submission{
		Spec:  types.StandardToken{Name: "Test Token", Symbol: "TST", Decimals: "18", TotalSupply: "1000000"},
		Chain: types.ChainEthereum,
	}
}

func recordStates(states *[]State) Option {
	return WithObserver(func(t Transition) { *states = append(*states, t.To) })
}

func TestSubmitPaysAndGenerates(t *testing.T) {
	session := newFakeSession(solPayer)
	gen := &stubGenerator{code: "pragma solidity ^0.8.20;\ncontract TestToken {}"}
	var states []State
	c := New(session, solQuote(), gen, recordStates(&states))

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, out.State)
	assert.Equal(t, "TestToken.sol", out.FileName)
	assert.Equal(t, gen.code, out.SolidityCode)
	assert.False(t, out.FeesWaived)
	require.NotNil(t, out.Confirmation)

	require.Len(t, session.sent, 1)
	assert.Equal(t, big.NewInt(370_000_000), session.sent[0])
	assert.Equal(t, solTreasury, session.sentTo[0])

	require.Len(t, gen.reqs, 1)
	req := gen.reqs[0]
	assert.Equal(t, types.TokenTypeStandard, req.TokenType)
	assert.Equal(t, "Test Token", req.FormData.Name)
	assert.Equal(t, types.ChainEthereum, req.SelectedChain)
	assert.Equal(t, out.Confirmation.TxHash, req.Payment.TxHash)
	assert.Equal(t, solPayer, req.Payment.Payer)

	assert.Equal(t, []State{StateValidating, StatePaying, StateGenerating, StateSuccess, StateIdle}, states)
	assert.Equal(t, StateIdle, c.State())
}

func TestSubmitLiquidityFee(t *testing.T) {
	session := newFakeSession(solPayer)
	c := New(session, solQuote(), &stubGenerator{code: "contract X {}"})

	sub := testSubmission()
	sub.Spec = types.Reshape(sub.Spec, types.TokenTypeLiquidityGenerator, types.ChainBsc, "0x294722f0BaB2717E14B7C10ac3933d068d363f4F")
	out, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.True(t, out.Succeeded())
	assert.Equal(t, big.NewInt(620_000_000), session.sent[0])
}

func TestSubmitAdminSkipsTransfer(t *testing.T) {
	session := newFakeSession(solTreasury)
	gen := &stubGenerator{code: "contract TestToken {}"}
	var states []State
	c := New(session, solQuote(), gen, recordStates(&states))

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, out.State)
	assert.True(t, out.FeesWaived)
	assert.Contains(t, out.Message, "waived")
	assert.Nil(t, out.Confirmation)
	assert.Empty(t, session.sent)

	require.Len(t, session.signed, 1)
	assert.Equal(t, types.WaiverMessage(types.TokenTypeStandard, testSubmission().Spec.FormData()), string(session.signed[0]))
	assert.Equal(t, "waiver-signature", gen.reqs[0].Payment.AdminSignature)
	assert.Empty(t, gen.reqs[0].Payment.TxHash)
	assert.NotContains(t, states, StateAwaitingConfirmation)
}

func TestSubmitAdminWithoutPriceData(t *testing.T) {
	session := newFakeSession(solTreasury)
	quotes := &staticQuotes{err: types.ErrNoPriceData}
	c := New(session, quotes, &stubGenerator{code: "contract A {}"}, WithTreasury(solTreasury))

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, out.State)
	assert.True(t, out.FeesWaived)
	assert.Empty(t, session.sent)
}

func TestSubmitFreeNetwork(t *testing.T) {
	session := newFakeSession(solPayer)
	quotes := solQuote()
	quotes.quote.Standard = decimal.Zero
	c := New(session, quotes, &stubGenerator{code: "contract A {}"})

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, out.State)
	assert.False(t, out.FeesWaived)
	assert.Empty(t, session.sent)
	assert.Empty(t, session.signed)
}

func TestSubmitNotConnected(t *testing.T) {
	gen := &stubGenerator{code: "contract A {}"}
	c := New(newFakeSession(""), solQuote(), gen)

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StateNotConnected, out.State)
	assert.Equal(t, types.ErrCodeNotConnected, out.Code)
	assert.Equal(t, "Please connect your wallet to proceed.", out.Message)
	assert.Empty(t, gen.reqs)
}

func TestSubmitNoPriceData(t *testing.T) {
	session := newFakeSession(solPayer)
	gen := &stubGenerator{code: "contract A {}"}
	c := New(session, &staticQuotes{err: errors.New("connection refused")}, gen)

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StateNoPriceData, out.State)
	assert.Equal(t, types.ErrCodeNoPriceData, out.Code)
	assert.Empty(t, session.sent)
	assert.Empty(t, gen.reqs)
	assert.Empty(t, out.SolidityCode)
}

func TestSubmitQuoteForOtherNetwork(t *testing.T) {
	quotes := solQuote()
	quotes.quote.Network = types.NetworkSolanaMainnet
	c := New(newFakeSession(solPayer), quotes, &stubGenerator{code: "contract A {}"})

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StateNoPriceData, out.State)
}

func TestSubmitRejectedAndFailedPaymentsDiffer(t *testing.T) {
	rejected := newFakeSession(solPayer)
	rejected.sendErr = types.ErrUserRejected
	gen := &stubGenerator{code: "contract A {}"}

	out, err := New(rejected, solQuote(), gen).Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StatePaymentFailed, out.State)
	assert.Equal(t, types.ErrCodePaymentRejected, out.Code)
	assert.Equal(t, "Transaction was rejected by the user.", out.Message)

	failed := newFakeSession(solPayer)
	failed.sendErr = errors.New("transaction 5VER failed: InsufficientFundsForRent")

	out2, err := New(failed, solQuote(), gen).Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StatePaymentFailed, out2.State)
	assert.Equal(t, types.ErrCodePaymentFailed, out2.Code)
	assert.NotEqual(t, out.Message, out2.Message)
	assert.Contains(t, out2.Message, "InsufficientFundsForRent")

	assert.Empty(t, gen.reqs)
}

func TestSubmitAdminRejectsWaiverSignature(t *testing.T) {
	session := newFakeSession(solTreasury)
	session.signErr = types.ErrUserRejected

	out, err := New(session, solQuote(), &stubGenerator{code: "contract A {}"}).Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StatePaymentFailed, out.State)
	assert.Equal(t, types.ErrCodePaymentRejected, out.Code)
}

func TestSubmitGenerationFailed(t *testing.T) {
	session := newFakeSession(solPayer)
	gen := &stubGenerator{err: types.NewError(types.ErrCodeConfigError, "Server configuration error: Missing API key.", nil)}
	c := New(session, solQuote(), gen)

	out, err := c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StateGenerationFailed, out.State)
	assert.Equal(t, types.ErrCodeConfigError, out.Code)
	assert.Equal(t, "Failed to generate smart contract. Reason: Server configuration error: Missing API key.", out.Message)
	assert.Empty(t, out.SolidityCode)
	assert.NotNil(t, out.Confirmation)

	gen.err = nil
	gen.code = ""
	out, err = c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StateGenerationFailed, out.State)
	assert.Equal(t, types.ErrCodeUpstreamFormatError, out.Code)
}

func TestSubmitInFlight(t *testing.T) {
	session := newFakeSession(solPayer)
	session.block = make(chan struct{})
	c := New(session, solQuote(), &stubGenerator{code: "contract A {}"})

	done := make(chan *Outcome)
	go func() {
		out, _ := c.Submit(context.Background(), testSubmission())
		done <- out
	}()

	require.Eventually(t, func() bool { return c.State() == StatePaying }, time.Second, time.Millisecond)

	_, err := c.Submit(context.Background(), testSubmission())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(session.block)
	out := <-done
	assert.Equal(t, StateSuccess, out.State)

	// manual resubmission works once idle
	out, err = c.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
}

func TestLoadQuoteCaches(t *testing.T) {
	quotes := solQuote()
	c := New(newFakeSession(solPayer), quotes, &stubGenerator{})

	for i := 0; i < 3; i++ {
		q, err := c.LoadQuote(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "SOL", q.Currency)
	}
	assert.Equal(t, 1, quotes.calls)
}

func TestLoadQuoteDoesNotCacheFailures(t *testing.T) {
	quotes := &staticQuotes{err: types.ErrNoPriceData}
	c := New(newFakeSession(solPayer), quotes, &stubGenerator{})

	_, err := c.LoadQuote(context.Background())
	assert.ErrorIs(t, err, types.ErrNoPriceData)

	quotes.err = nil
	quotes.quote = solQuote().quote
	_, err = c.LoadQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, quotes.calls)
}

func TestIsAdminEVMIgnoresCase(t *testing.T) {
	session := &fakeSession{network: types.NetworkFitochain, family: types.ChainEVM, address: "0x294722f0bab2717e14b7c10ac3933d068d363f4f"}
	c := New(session, nil, &stubGenerator{})
	assert.True(t, c.IsAdmin(types.FeeQuote{Treasury: types.DefaultTreasury}))

	solana := New(newFakeSession(solTreasury), nil, &stubGenerator{})
	assert.False(t, solana.IsAdmin(types.FeeQuote{Treasury: "9xqewvg816bux9epjhmat23yvvm2zwbrrpzb9pusvfin"}))
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Test Token":    "TestToken.sol",
		"My-Coin_2!":    "MyCoin2.sol",
		"":              "Token.sol",
		"  ---  ":       "Token.sol",
		"Ünïcode Tøken": "ncodeTken.sol",
	}
	for name, want := range tests {
		assert.Equal(t, want, FileName(name), name)
	}
}

func TestSubmitInvalidFormIsNotPaid(t *testing.T) {
	session := newFakeSession(solPayer)
	gen := &stubGenerator{code: "contract A {}"}
	c := New(session, solQuote(), gen)

	sub := testSubmission()
	sub.Spec = types.LiquidityToken{StandardToken: types.StandardToken{Name: "A", Symbol: "A", Decimals: "18", TotalSupply: "1"}}
	out, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, types.ErrCodeInvalidRequest, out.Code)
	assert.Contains(t, out.Message, "routerAddress is required")
	assert.Empty(t, session.sent)
	assert.Empty(t, gen.reqs)
}
