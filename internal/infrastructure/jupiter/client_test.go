package jupiter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelfi/solswap/internal/adapter/gateway"
	"github.com/kestrelfi/solswap/internal/domain/entity"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

const quoteBody = `{
	"inputMint": "So11111111111111111111111111111111111111112",
	"outputMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"inAmount": "1000000",
	"outAmount": "150000000",
	"slippageBps": 50,
	"priceImpactPct": "0.01",
	"routePlan": [
		{"swapInfo": {"ammKey": "amm1", "label": "Orca", "inputMint": "So11111111111111111111111111111111111111112", "outputMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "inAmount": "1000000", "outAmount": "150000000"}, "percent": 100}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL}, nil)
}

func TestGetQuote(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(quoteBody))
	})

	quote, err := client.GetQuote(context.Background(), gateway.QuoteRequest{
		InputMint:      solMint,
		OutputMint:     usdcMint,
		Amount:         1_000_000,
		SlippageBps:    50,
		PlatformFeeBps: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, solMint, quote.InputMint)
	assert.Equal(t, usdcMint, quote.OutputMint)
	assert.Equal(t, "150000000", quote.OutAmount)
	assert.Len(t, quote.RoutePlan, 1)
	assert.Equal(t, "Orca", quote.RoutePlan[0].SwapInfo.Label)

	assert.Equal(t, []string{"1000000"}, gotQuery["amount"])
	assert.Equal(t, []string{"true"}, gotQuery["restrictIntermediateTokens"])
	assert.Equal(t, []string{"100"}, gotQuery["platformFeeBps"])
}

func TestGetQuote_PlatformFeeOmittedWhenZero(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(quoteBody))
	})

	_, err := client.GetQuote(context.Background(), gateway.QuoteRequest{
		InputMint:   solMint,
		OutputMint:  usdcMint,
		Amount:      1_000_000,
		SlippageBps: 50,
	})
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "platformFeeBps")
}

func TestGetQuote_Validation(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://unused"}, nil)

	_, err := client.GetQuote(context.Background(), gateway.QuoteRequest{
		InputMint:  solMint,
		OutputMint: usdcMint,
		Amount:     0,
	})
	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)

	_, err = client.GetQuote(context.Background(), gateway.QuoteRequest{
		InputMint:   solMint,
		OutputMint:  usdcMint,
		Amount:      1,
		SlippageBps: -1,
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "slippageBps", vErr.Field)
}

func TestGetQuote_ServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "No route found"}`))
	})

	_, err := client.GetQuote(context.Background(), gateway.QuoteRequest{
		InputMint:   solMint,
		OutputMint:  usdcMint,
		Amount:      1_000_000,
		SlippageBps: 50,
	})

	var svcErr *entity.QuoteServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, "No route found", svcErr.Message)
}

func TestGetQuote_InvalidPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"inputMint": "x", "outAmount": "1"}`))
	})

	_, err := client.GetQuote(context.Background(), gateway.QuoteRequest{
		InputMint:   solMint,
		OutputMint:  usdcMint,
		Amount:      1_000_000,
		SlippageBps: 50,
	})
	assert.True(t, errors.Is(err, entity.ErrInvalidQuote))
}

func TestBuildSwapTransaction(t *testing.T) {
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"swapTransaction": "AQID", "lastValidBlockHeight": 123456}`))
	})

	quote := &entity.Quote{InputMint: solMint, OutputMint: usdcMint, InAmount: "1", OutAmount: "2"}
	opts := gateway.DefaultBuildOptions()
	opts.FeeAccount = "FeeAcc"
	opts.DestinationTokenAccount = "DestAcc"

	swapTx, err := client.BuildSwapTransaction(context.Background(), quote, "Signer111", opts)
	require.NoError(t, err)

	assert.Equal(t, "AQID", swapTx.Payload)
	assert.Equal(t, uint64(123456), swapTx.LastValidBlockHeight)

	body := string(gotBody)
	assert.Contains(t, body, `"userPublicKey":"Signer111"`)
	assert.Contains(t, body, `"feeAccount":"FeeAcc"`)
	assert.Contains(t, body, `"destinationTokenAccount":"DestAcc"`)
	assert.Contains(t, body, `"priorityLevel":"veryHigh"`)
	assert.Contains(t, body, `"dynamicSlippage":true`)
}

func TestBuildSwapTransaction_BuildError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "simulation failed"}`))
	})

	quote := &entity.Quote{InputMint: solMint, OutputMint: usdcMint, InAmount: "1", OutAmount: "2"}
	_, err := client.BuildSwapTransaction(context.Background(), quote, "Signer111", gateway.DefaultBuildOptions())

	var buildErr *entity.TransactionBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "simulation failed", buildErr.Message)
}
