package tronscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/corepay/usdtgate/internal/adapter/config"
	"github.com/corepay/usdtgate/internal/core/domain"
	"go.uber.org/zap"
)

// Client reads confirmed TRC20 transfers for a wallet from the tronscan
// API. Amounts come back as integer strings in token base units
// (six decimals for USDT).
type Client struct {
	logger     *zap.Logger
	apiURL     string
	contractID string
	httpClient *http.Client
}

func NewClient(cfg *config.Tron, log *zap.Logger) (*Client, error) {
	return &Client{
		logger:     log,
		apiURL:     cfg.APIURL,
		contractID: cfg.ContractID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type transferListResponse struct {
	Data []struct {
		To             string `json:"to"`
		Amount         string `json:"amount"`
		ContractRet    string `json:"contract_ret"`
		BlockTimestamp int64  `json:"block_ts"`
		Hash           string `json:"hash"`
	} `json:"data"`
}

func (c *Client) ListTransfers(ctx context.Context, wallet string, from, to time.Time) ([]domain.Transfer, error) {
	query := url.Values{}
	query.Set("sort", "-timestamp")
	query.Set("count", "true")
	query.Set("limit", "50")
	query.Set("start", "0")
	query.Set("address", wallet)
	query.Set("trc20Id", c.contractID)
	query.Set("start_timestamp", strconv.FormatInt(from.UnixMilli(), 10))
	query.Set("end_timestamp", strconv.FormatInt(to.UnixMilli(), 10))

	requestStr := c.apiURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error on %s : %w", requestStr, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transfer request error %s : %w", requestStr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status from ledger",
			zap.String("wallet", wallet), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("bad response %v for request %s", resp.StatusCode, requestStr)
	}

	var result transferListResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("error on transfer response decode: %w", err)
	}

	transfers := make([]domain.Transfer, 0, len(result.Data))
	for _, item := range result.Data {
		raw, err := strconv.ParseInt(item.Amount, 10, 64)
		if err != nil {
			c.logger.Warn("skipping transfer with unparsable amount",
				zap.String("hash", item.Hash), zap.String("amount", item.Amount))
			continue
		}
		transfers = append(transfers, domain.Transfer{
			To:        item.To,
			AmountRaw: raw,
			Succeeded: item.ContractRet == "SUCCESS",
			BlockTime: time.UnixMilli(item.BlockTimestamp),
			Hash:      item.Hash,
		})
	}

	return transfers, nil
}
