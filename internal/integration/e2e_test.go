package integration

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"price-registry/internal/application"
	"price-registry/internal/bootstrap"
	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/auth"
	httpserver "price-registry/internal/infrastructure/http"
	"price-registry/internal/infrastructure/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

const requestContentType = "application/json"

type recordResponse struct {
	Pair      string `json:"pair"`
	Price     int64  `json:"price"`
	Timestamp uint64 `json:"timestamp"`
	Provider  string `json:"provider"`
}

type freshResponse struct {
	Fresh bool `json:"fresh"`
}

// startStack boots the API and the publisher against one shared Redis.
func startStack(t *testing.T, signer *auth.Signer) (*httptest.Server, *worker.Publisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("STORAGE", "redis")
	t.Setenv("NONCE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("PUBLISHER_SOURCE", "fake")
	t.Setenv("FAKE_PRICE", "1.2345")
	t.Setenv("PUBLISHER_SYMBOLS", "EUR,XLM")
	t.Setenv("PUBLISHER_SEED", signer.SeedHex())
	t.Setenv("ALLOWED_PROVIDERS", signer.Address().String())

	srv, cleanupAPI, err := bootstrap.InitAPI(context.Background())
	require.NoError(t, err)
	t.Cleanup(cleanupAPI)
	ts := httptest.NewServer(httpserver.NewRouter(srv))
	t.Cleanup(ts.Close)

	w, cleanupPub, err := bootstrap.InitPublisher(context.Background())
	require.NoError(t, err)
	t.Cleanup(cleanupPub)
	pub, ok := w.(*worker.Publisher)
	require.True(t, ok)
	return ts, pub
}

func postPrice(t *testing.T, baseURL string, signer *auth.Signer, pair string, price int64) int {
	t.Helper()
	proof := signer.Sign(application.SetPriceMessage(domain.Pair(pair), price, signer.Address()))
	b, _ := json.Marshal(map[string]any{
		"pair":      pair,
		"price":     price,
		"provider":  signer.Address().String(),
		"nonce":     proof.Nonce,
		"issued_at": proof.IssuedAt,
		"signature": hex.EncodeToString(proof.Signature),
	})
	resp, err := http.Post(baseURL+"/prices", requestContentType, bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestE2E_PublisherThenRead(t *testing.T) {
	signer, err := auth.NewSignerFromSeedHex(strings.Repeat("11", 32))
	require.NoError(t, err)
	ts, pub := startStack(t, signer)

	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/prices?pair=EUR/USD", nil))
	require.Equal(t, 2, pub.Tick(context.Background()))

	var rec recordResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/prices?pair=EUR/USD", &rec))
	require.Equal(t, int64(1_234_500), rec.Price)
	require.Equal(t, signer.Address().String(), rec.Provider)

	var fresh freshResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/prices/fresh?pair=XLM/USD&max_age=3600", &fresh))
	require.True(t, fresh.Fresh)
}

func TestE2E_DirectWriteAndAllowlist(t *testing.T) {
	signer, err := auth.NewSignerFromSeedHex(strings.Repeat("22", 32))
	require.NoError(t, err)
	ts, _ := startStack(t, signer)

	require.Equal(t, http.StatusNoContent, postPrice(t, ts.URL, signer, "BTC/USD", 6_500_000))

	stranger, err := auth.NewSignerFromSeedHex(strings.Repeat("33", 32))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, postPrice(t, ts.URL, stranger, "BTC/USD", 1))

	var rec recordResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/prices?pair=BTC/USD", &rec))
	require.Equal(t, int64(6_500_000), rec.Price)
	require.Equal(t, signer.Address().String(), rec.Provider)
}
