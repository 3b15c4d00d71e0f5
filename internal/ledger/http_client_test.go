package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-core/pkg/address"
)

func testAddress(t *testing.T) address.Address {
	t.Helper()
	addr, err := address.Derive("vault-main", "alice")
	require.NoError(t, err)
	return addr
}

func TestBalanceOf(t *testing.T) {
	addr := testAddress(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balance_of", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, addr.String(), req["account"])

		_ = json.NewEncoder(w).Encode(map[string]string{"balance": "500"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	balance, err := c.BalanceOf(context.Background(), addr)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)))
}

func TestTransferSuccess(t *testing.T) {
	addr := testAddress(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transfer", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "290", req["amount"])
		assert.Equal(t, "10", req["fee"])
		assert.NotEmpty(t, req["memo"])

		_ = json.NewEncoder(w).Encode(map[string]string{"tx_id": "tx-42"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	txID, err := c.Transfer(context.Background(), TransferRequest{
		From:   addr,
		To:     address.Address{Owner: "dest"},
		Amount: decimal.NewFromInt(290),
		Fee:    decimal.NewFromInt(10),
		Memo:   "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-42", txID)
}

func TestTransferRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"kind":    KindInsufficientFunds,
			"message": "balance too low at ledger",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := c.Transfer(context.Background(), TransferRequest{
		From:   testAddress(t),
		To:     address.Address{Owner: "dest"},
		Amount: decimal.NewFromInt(100),
		Fee:    decimal.NewFromInt(10),
	})
	require.Error(t, err)

	// 应用层拒绝必须可识别 (与传输失败互斥)
	assert.True(t, IsRejected(err))
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, KindInsufficientFunds, rejected.Kind)
}

func TestTransportFailure(t *testing.T) {
	// 服务器返回 500: 传输层失败, 不是账本拒绝
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := c.BalanceOf(context.Background(), testAddress(t))
	require.Error(t, err)
	assert.False(t, IsRejected(err))

	// 服务不可达同理
	srv.Close()
	_, err = c.BalanceOf(context.Background(), testAddress(t))
	require.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestMalformedResponseIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := c.BalanceOf(context.Background(), testAddress(t))
	require.Error(t, err)
	assert.False(t, IsRejected(err))
}
