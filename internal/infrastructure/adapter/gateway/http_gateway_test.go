package gateway

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gatewayport "github.com/arman-rahimi/credit-ledger/internal/domain/port/gateway"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/logger"
)

func newGateway(baseURL string) *HTTPGateway {
	return NewHTTPGateway(Config{
		BaseURL:    baseURL,
		MerchantID: "1001",
		Secret:     "s3cret",
		NotifyURL:  "http://localhost:8080/payment/notify",
	}, logger.NewNoopLogger())
}

func TestHTTPGateway_Sign(t *testing.T) {
	g := newGateway("http://unused")

	t.Run("signature covers sorted non-empty parameters plus secret", func(t *testing.T) {
		params := map[string]string{
			"out_trade_no": "CRG001",
			"money":        "5000",
			"pid":          "1001",
			"empty":        "",
			"sign":         "ignored",
		}

		// money=5000&out_trade_no=CRG001&pid=1001 + secret
		sum := md5.Sum([]byte("money=5000&out_trade_no=CRG001&pid=1001s3cret"))
		expected := hex.EncodeToString(sum[:])

		assert.Equal(t, expected, g.sign(params))
	})

	t.Run("verify accepts a matching signature", func(t *testing.T) {
		params := map[string]string{"out_trade_no": "CRG001", "money": "5000"}

		assert.True(t, g.VerifySign(params, g.sign(params)))
	})

	t.Run("verify rejects tampered parameters", func(t *testing.T) {
		params := map[string]string{"out_trade_no": "CRG001", "money": "5000"}
		signature := g.sign(params)
		params["money"] = "9999"

		assert.False(t, g.VerifySign(params, signature))
	})

	t.Run("verify rejects an empty signature", func(t *testing.T) {
		assert.False(t, g.VerifySign(map[string]string{}, ""))
	})
}

func TestHTTPGateway_CreateRemoteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("should send signed form and decode instructions", func(t *testing.T) {
		var gotTradeNo, gotMoney, gotSign string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/order/create", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			gotTradeNo = r.PostFormValue("out_trade_no")
			gotMoney = r.PostFormValue("money")
			gotSign = r.PostFormValue("sign")

			fmt.Fprint(w, `{"code":1,"qrcode":"https://pay.example.com/qr/1","payurl":"https://pay.example.com/pay/1"}`)
		}))
		defer server.Close()

		g := newGateway(server.URL)
		instructions, err := g.CreateRemoteOrder(ctx, 5000, "CRG001")

		require.NoError(t, err)
		assert.Equal(t, "https://pay.example.com/qr/1", instructions.QRCodeURL)
		assert.Equal(t, "https://pay.example.com/pay/1", instructions.PayURL)

		assert.Equal(t, "CRG001", gotTradeNo)
		assert.Equal(t, "5000", gotMoney)
		assert.True(t, g.VerifySign(map[string]string{
			"out_trade_no": "CRG001",
			"money":        "5000",
			"notify_url":   "http://localhost:8080/payment/notify",
			"pid":          "1001",
		}, gotSign))
	})

	t.Run("should surface provider rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":0,"msg":"merchant disabled"}`)
		}))
		defer server.Close()

		g := newGateway(server.URL)
		_, err := g.CreateRemoteOrder(ctx, 5000, "CRG001")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "merchant disabled")
	})

	t.Run("should surface HTTP errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		g := newGateway(server.URL)
		_, err := g.CreateRemoteOrder(ctx, 5000, "CRG001")

		assert.Error(t, err)
	})
}

func TestHTTPGateway_QueryRemoteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("should map trade statuses", func(t *testing.T) {
		tests := []struct {
			name        string
			tradeStatus string
			want        gatewayport.RemoteOrderStatus
		}{
			{name: "success maps to paid", tradeStatus: "TRADE_SUCCESS", want: gatewayport.RemoteStatusPaid},
			{name: "closed maps to failed", tradeStatus: "TRADE_CLOSED", want: gatewayport.RemoteStatusFailed},
			{name: "anything else stays pending", tradeStatus: "WAIT_BUYER_PAY", want: gatewayport.RemoteStatusPending},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "/api/order/query", r.URL.Path)
					fmt.Fprintf(w, `{"code":1,"out_trade_no":"CRG001","money":"5000","trade_status":"%s"}`, tt.tradeStatus)
				}))
				defer server.Close()

				g := newGateway(server.URL)
				remote, err := g.QueryRemoteOrder(ctx, "CRG001")

				require.NoError(t, err)
				assert.Equal(t, tt.want, remote.Status)
				assert.Equal(t, "CRG001", remote.OutTradeNo)
				assert.Equal(t, int64(5000), remote.Amount)
			})
		}
	})

	t.Run("should reject malformed amounts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":1,"out_trade_no":"CRG001","money":"50.00","trade_status":"TRADE_SUCCESS"}`)
		}))
		defer server.Close()

		g := newGateway(server.URL)
		_, err := g.QueryRemoteOrder(ctx, "CRG001")

		assert.Error(t, err)
	})
}
