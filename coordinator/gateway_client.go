package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vitwit/tokensmith/types"
)

const (
	// DefaultGatewayTimeout bounds one call to the generation gateway.
	DefaultGatewayTimeout = 90 * time.Second

	generatePath = "/api/generate-token"
	pricesPath   = "/api/get-prices"

	maxResponseBytes = 4 << 20

	invalidResponseMessage = "Received an invalid response from the server."
)

// HTTPGateway calls a tokensmith gateway over HTTP.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

var (
	_ Generator   = (*HTTPGateway)(nil)
	_ QuoteSource = (*HTTPGateway)(nil)
)

type GatewayOption func(*HTTPGateway)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *HTTPGateway) {
		g.client = c
	}
}

// NewHTTPGateway creates a client for the gateway at baseURL.
func NewHTTPGateway(baseURL string, opts ...GatewayOption) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultGatewayTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate posts req and returns the Solidity source. Failures are
// *types.Error carrying the server's message when it sent one.
func (g *HTTPGateway) Generate(ctx context.Context, req *types.GenerationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", types.NewError(types.ErrCodeInvalidRequest, err.Error(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", types.NewError(types.ErrCodeUnknown, err.Error(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	status, data, err := g.do(httpReq)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", responseError(status, data)
	}

	var res types.GenerationResult
	if err := json.Unmarshal(data, &res); err != nil || res.SolidityCode == "" {
		return "", types.NewError(types.ErrCodeUpstreamFormatError, invalidResponseMessage, err)
	}
	return res.SolidityCode, nil
}

// Quote fetches the fees of network.
func (g *HTTPGateway) Quote(ctx context.Context, network types.FeeNetwork) (types.FeeQuote, error) {
	return g.QuoteFor(ctx, network, "")
}

// QuoteFor fetches the fees of network for the wallet at address.
func (g *HTTPGateway) QuoteFor(ctx context.Context, network types.FeeNetwork, address string) (types.FeeQuote, error) {
	q := url.Values{}
	if network != "" {
		q.Set("network", string(network))
	}
	if address != "" {
		q.Set("address", address)
	}
	target := g.baseURL + pricesPath
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return types.FeeQuote{}, err
	}

	status, data, err := g.do(httpReq)
	if err != nil {
		return types.FeeQuote{}, fmt.Errorf("%w: %v", types.ErrNoPriceData, err)
	}
	if status != http.StatusOK {
		return types.FeeQuote{}, fmt.Errorf("%w: %v", types.ErrNoPriceData, responseError(status, data))
	}

	var prices types.PricesResponse
	if err := json.Unmarshal(data, &prices); err != nil {
		return types.FeeQuote{}, fmt.Errorf("%w: failed to parse prices: %v", types.ErrNoPriceData, err)
	}
	return prices.Quote(), nil
}

func (g *HTTPGateway) do(req *http.Request) (int, []byte, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, types.NewError(types.ErrCodeUpstreamError, err.Error(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, types.NewError(types.ErrCodeUpstreamError, err.Error(), err)
	}
	return resp.StatusCode, data, nil
}

// responseError turns a non-2xx response into a *types.Error, preferring
// the server's own message and code.
func responseError(status int, data []byte) *types.Error {
	var body types.ErrorResponse
	_ = json.Unmarshal(data, &body)

	msg := body.Error
	if msg == "" {
		msg = fmt.Sprintf("Server responded with status: %d", status)
	}
	code := body.Code
	if code == "" {
		code = codeForStatus(status)
	}
	return types.NewError(code, msg, nil)
}

func codeForStatus(status int) types.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return types.ErrCodeInvalidRequest
	case http.StatusPaymentRequired:
		return types.ErrCodePaymentRequired
	case http.StatusMethodNotAllowed:
		return types.ErrCodeMethodNotAllowed
	case http.StatusBadGateway:
		return types.ErrCodeUpstreamFormatError
	default:
		return types.ErrCodeUnknown
	}
}
