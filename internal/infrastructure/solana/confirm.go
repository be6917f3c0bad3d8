package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	errTransactionExpired = errors.New("block height exceeded transaction validity")
	errOnChainFailure     = errors.New("transaction failed on chain")
)

func isExpiredErr(err error) bool { return errors.Is(err, errTransactionExpired) }
func isOnChainErr(err error) bool { return errors.Is(err, errOnChainFailure) }

// signatureSubscribe request over the RPC websocket endpoint
type wsSubscribeRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// wsMessage covers both the subscription ack and signature notifications
type wsMessage struct {
	Method string `json:"method,omitempty"`
	Params *struct {
		Result struct {
			Value struct {
				Err json.RawMessage `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// confirmViaWebSocket subscribes to signature notifications and waits for
// the transaction to reach the configured commitment. Expiry is enforced by
// periodically checking the chain's block height against the transaction's
// recorded validity bound.
func (c *Client) confirmViaWebSocket(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.config.WSURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	sub := wsSubscribeRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			sig.String(),
			map[string]string{"commitment": string(c.commitment)},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("websocket subscribe: %w", err)
	}

	notifications := make(chan wsMessage, 1)
	readErrs := make(chan error, 1)

	go func() {
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				readErrs <- err
				return
			}
			if msg.Error != nil || msg.Method == "signatureNotification" {
				notifications <- msg
				return
			}
			// subscription ack, keep reading
		}
	}()

	expiryTicker := time.NewTicker(10 * time.Second)
	defer expiryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErrs:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return fmt.Errorf("websocket read: %w", err)
		case <-expiryTicker.C:
			expired, err := c.pastValidity(ctx, lastValidBlockHeight)
			if err != nil {
				c.log.Debug("block height lookup failed during confirmation", zap.Error(err))
				continue
			}
			if expired {
				return errTransactionExpired
			}
		case msg := <-notifications:
			if msg.Error != nil {
				return fmt.Errorf("websocket subscription: %s", msg.Error.Message)
			}
			if msg.Params != nil && len(msg.Params.Result.Value.Err) > 0 && string(msg.Params.Result.Value.Err) != "null" {
				return fmt.Errorf("%w: %s", errOnChainFailure, msg.Params.Result.Value.Err)
			}
			return nil
		}
	}
}
