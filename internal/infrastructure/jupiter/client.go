package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kestrelfi/solswap/internal/adapter/gateway"
	"github.com/kestrelfi/solswap/internal/domain/entity"
)

// priceImpactWarnThreshold is the percentage above which a quote is logged
// as suspicious but still accepted.
var priceImpactWarnThreshold = decimal.NewFromInt(10)

// Ensure Client implements QuoteGateway
var _ gateway.QuoteGateway = (*Client)(nil)

// ClientConfig holds configuration for the swap-routing API client
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a Jupiter-compatible quote and swap API client
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a new quote API client
func NewClient(config ClientConfig, log *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://quote-api.jup.ag/v6"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		log: log.Named("jupiter"),
	}
}

// serviceError is the error body carried by non-2xx responses
type serviceError struct {
	Error string `json:"error"`
}

// GetQuote prices a swap of amount input-token units into the output token
func (c *Client) GetQuote(ctx context.Context, req gateway.QuoteRequest) (*entity.Quote, error) {
	if req.Amount == 0 {
		return nil, entity.NewValidationError("amount", "must be positive")
	}
	if req.SlippageBps < 0 {
		return nil, entity.NewValidationError("slippageBps", "must be non-negative")
	}

	params := url.Values{}
	params.Set("inputMint", req.InputMint)
	params.Set("outputMint", req.OutputMint)
	params.Set("amount", strconv.FormatUint(req.Amount, 10))
	params.Set("slippageBps", strconv.Itoa(req.SlippageBps))
	params.Set("restrictIntermediateTokens", "true")
	if req.PlatformFeeBps > 0 {
		params.Set("platformFeeBps", strconv.Itoa(req.PlatformFeeBps))
	}

	body, status, err := c.doRequest(ctx, http.MethodGet, "/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &entity.QuoteServiceError{StatusCode: status, Message: errorMessage(body)}
	}

	var quote entity.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}
	if quote.InputMint == "" || quote.OutputMint == "" || quote.InAmount == "" || quote.OutAmount == "" {
		return nil, fmt.Errorf("%w: missing mint or amount fields", entity.ErrInvalidQuote)
	}

	if quote.PriceImpact().GreaterThan(priceImpactWarnThreshold) {
		c.log.Warn("quote price impact above threshold",
			zap.String("input_mint", quote.InputMint),
			zap.String("output_mint", quote.OutputMint),
			zap.String("price_impact_pct", quote.PriceImpactPct))
	}

	return &quote, nil
}

// swapRequest is the POST /swap body
type swapRequest struct {
	QuoteResponse           *entity.Quote  `json:"quoteResponse"`
	UserPublicKey           string         `json:"userPublicKey"`
	DynamicComputeUnitLimit bool           `json:"dynamicComputeUnitLimit"`
	DynamicSlippage         bool           `json:"dynamicSlippage"`
	PrioritizationFee       prioritization `json:"prioritizationFeeLamports"`
	FeeAccount              string         `json:"feeAccount,omitempty"`
	DestinationTokenAccount string         `json:"destinationTokenAccount,omitempty"`
}

type prioritization struct {
	PriorityLevelWithMaxLamports priorityLevel `json:"priorityLevelWithMaxLamports"`
}

type priorityLevel struct {
	MaxLamports   uint64 `json:"maxLamports"`
	PriorityLevel string `json:"priorityLevel"`
}

// BuildSwapTransaction turns a quote into a signable transaction payload
func (c *Client) BuildSwapTransaction(ctx context.Context, quote *entity.Quote, signerAddress string, opts gateway.BuildOptions) (*entity.SwapTransaction, error) {
	if quote == nil {
		return nil, entity.NewValidationError("quote", "must not be nil")
	}
	if signerAddress == "" {
		return nil, entity.NewValidationError("signerAddress", "must not be empty")
	}

	fee := opts.PriorityFee
	if fee.MaxLamports == 0 && fee.PriorityLevel == "" {
		fee = gateway.DefaultPriorityFee()
	}

	req := swapRequest{
		QuoteResponse:           quote,
		UserPublicKey:           signerAddress,
		DynamicComputeUnitLimit: opts.DynamicComputeUnitLimit,
		DynamicSlippage:         opts.DynamicSlippage,
		PrioritizationFee: prioritization{
			PriorityLevelWithMaxLamports: priorityLevel{
				MaxLamports:   fee.MaxLamports,
				PriorityLevel: fee.PriorityLevel,
			},
		},
		FeeAccount:              opts.FeeAccount,
		DestinationTokenAccount: opts.DestinationTokenAccount,
	}

	body, status, err := c.doRequest(ctx, http.MethodPost, "/swap", req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &entity.TransactionBuildError{StatusCode: status, Message: errorMessage(body)}
	}

	var swapTx entity.SwapTransaction
	if err := json.Unmarshal(body, &swapTx); err != nil {
		return nil, fmt.Errorf("unmarshal swap transaction: %w", err)
	}
	if swapTx.Payload == "" {
		return nil, &entity.TransactionBuildError{StatusCode: status, Message: "response missing swapTransaction"}
	}

	return &swapTx, nil
}

// doRequest performs an HTTP request and returns the raw body and status
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// errorMessage extracts the service's error field, falling back to the body
func errorMessage(body []byte) string {
	var svcErr serviceError
	if err := json.Unmarshal(body, &svcErr); err == nil && svcErr.Error != "" {
		return svcErr.Error
	}
	return string(body)
}
