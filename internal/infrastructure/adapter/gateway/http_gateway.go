// Package gateway implements the outbound payment provider client. The
// provider speaks a signed form-encoded protocol: every request carries an
// MD5 signature over the sorted parameters plus the merchant secret, and
// every response is re-verified before it is trusted.
package gateway

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	gatewayport "github.com/arman-rahimi/credit-ledger/internal/domain/port/gateway"
)

// Config holds the provider endpoint and merchant credentials
type Config struct {
	BaseURL    string
	MerchantID string
	Secret     string
	NotifyURL  string
	Timeout    time.Duration
}

// HTTPGateway implements the PaymentGateway port over HTTP
type HTTPGateway struct {
	config Config
	client *http.Client
	logger coreport.Logger
}

// NewHTTPGateway creates a provider client
func NewHTTPGateway(config Config, logger coreport.Logger) *HTTPGateway {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// sign computes the MD5 signature over the sorted non-empty parameters
// concatenated with the merchant secret
func (g *HTTPGateway) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	sb.WriteString(g.config.Secret)

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// VerifySign checks a signature the provider attached to a callback or
// response body
func (g *HTTPGateway) VerifySign(params map[string]string, signature string) bool {
	return signature != "" && g.sign(params) == signature
}

func (g *HTTPGateway) post(ctx context.Context, path string, params map[string]string, out any) error {
	params["pid"] = g.config.MerchantID
	params["sign"] = g.sign(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(g.config.BaseURL, "/")+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

type createResponse struct {
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	QRCodeURL string `json:"qrcode"`
	PayURL    string `json:"payurl"`
}

// CreateRemoteOrder registers an order with the provider and returns payment
// instructions
func (g *HTTPGateway) CreateRemoteOrder(ctx context.Context, amount int64, outTradeNo string) (*gatewayport.PaymentInstructions, error) {
	params := map[string]string{
		"out_trade_no": outTradeNo,
		"money":        strconv.FormatInt(amount, 10),
		"notify_url":   g.config.NotifyURL,
	}

	var resp createResponse
	if err := g.post(ctx, "/api/order/create", params, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 1 {
		return nil, fmt.Errorf("provider rejected order: %s", resp.Msg)
	}

	g.logger.Debug("Remote order registered", map[string]any{
		"out_trade_no": outTradeNo,
		"amount":       amount,
	})
	return &gatewayport.PaymentInstructions{
		QRCodeURL: resp.QRCodeURL,
		PayURL:    resp.PayURL,
	}, nil
}

type queryResponse struct {
	Code        int    `json:"code"`
	Msg         string `json:"msg"`
	OutTradeNo  string `json:"out_trade_no"`
	Money       string `json:"money"`
	TradeStatus string `json:"trade_status"`
}

// QueryRemoteOrder fetches the provider's authoritative order status
func (g *HTTPGateway) QueryRemoteOrder(ctx context.Context, outTradeNo string) (*gatewayport.RemoteOrder, error) {
	params := map[string]string{
		"out_trade_no": outTradeNo,
	}

	var resp queryResponse
	if err := g.post(ctx, "/api/order/query", params, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 1 {
		return nil, fmt.Errorf("provider query failed: %s", resp.Msg)
	}

	amount, err := strconv.ParseInt(resp.Money, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("provider returned malformed amount %q", resp.Money)
	}

	status := gatewayport.RemoteStatusPending
	switch resp.TradeStatus {
	case "TRADE_SUCCESS":
		status = gatewayport.RemoteStatusPaid
	case "TRADE_CLOSED":
		status = gatewayport.RemoteStatusFailed
	}

	return &gatewayport.RemoteOrder{
		OutTradeNo: resp.OutTradeNo,
		Amount:     amount,
		Status:     status,
	}, nil
}
