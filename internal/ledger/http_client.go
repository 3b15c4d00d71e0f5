package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vault-core/pkg/address"
	"vault-core/pkg/monitor"
)

// HTTPClient 通过 JSON over HTTP 访问账本服务。
// 每次调用有界等待 (http.Client Timeout), 超时视为传输层失败。
// 注意: 转账请求一旦发出就无法取消, 超时不代表账本没执行, 上层补偿策略必须保守。
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient 创建账本客户端
// baseURL: "http://ledger:9090", timeout: 单次调用上限
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type balanceOfRequest struct {
	Account string `json:"account"`
}

type balanceOfResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type transferRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
	Memo   string          `json:"memo,omitempty"`
}

type transferResponse struct {
	TxID string `json:"tx_id"`
}

type rejectionResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BalanceOf 查询地址余额
func (c *HTTPClient) BalanceOf(ctx context.Context, addr address.Address) (decimal.Decimal, error) {
	defer monitor.ObserveLedgerCall("balance_of")()

	var resp balanceOfResponse
	if err := c.post(ctx, "/v1/balance_of", balanceOfRequest{Account: addr.String()}, &resp); err != nil {
		return decimal.Zero, err
	}
	if resp.Balance.IsNegative() {
		return decimal.Zero, fmt.Errorf("ledger returned negative balance %s", resp.Balance)
	}
	return resp.Balance, nil
}

// Transfer 发起转账
func (c *HTTPClient) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	defer monitor.ObserveLedgerCall("transfer")()

	var resp transferResponse
	err := c.post(ctx, "/v1/transfer", transferRequest{
		From:   req.From.String(),
		To:     req.To.String(),
		Amount: req.Amount,
		Fee:    req.Fee,
		Memo:   req.Memo,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TxID, nil
}

// post 发送请求并解码响应。
// 协议约定:
//   - 2xx: 成功, body 为结果对象
//   - 422: 账本应用层拒绝, body 为 {kind, message} -> *RejectedError
//   - 其它状态 / 网络错误 / 响应损坏: 传输层失败
func (c *HTTPClient) post(ctx context.Context, path string, in interface{}, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ledger request encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ledger request build: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ledger unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("ledger response read: %w", err)
	}

	switch {
	case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("ledger response decode: %w", err)
		}
		return nil

	case httpResp.StatusCode == http.StatusUnprocessableEntity:
		var rejection rejectionResponse
		if err := json.Unmarshal(body, &rejection); err != nil {
			// 拒绝响应本身损坏: 无法确认资金未移动, 按传输失败处理
			return fmt.Errorf("ledger rejection decode: %w", err)
		}
		if rejection.Kind == "" {
			rejection.Kind = KindGeneric
		}
		return &RejectedError{Kind: rejection.Kind, Message: rejection.Message}

	default:
		return fmt.Errorf("ledger returned status %d: %s", httpResp.StatusCode, string(body))
	}
}
