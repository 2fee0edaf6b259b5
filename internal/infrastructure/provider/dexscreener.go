package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"price-registry/internal/application"
	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/httpx"
	"price-registry/internal/infrastructure/logx"

	"go.uber.org/zap"
)

const (
	dexScreenerSearchPath = "/latest/dex/search"
	dexScreenerTokensPath = "/tokens/v1"
	// Liquidity gaps at or below this many USD are treated as a tie and broken by 24h volume.
	liquidityTieUSD = 10000
)

var ErrNoQuote = errors.New("no pair passed the liquidity filter")

// TokenAddress locates a token contract on one chain.
type TokenAddress struct {
	Chain   string
	Address string
}

// TokenConfig tunes lookups for one symbol. Addresses are tried in order
// before any search term.
type TokenConfig struct {
	Addresses    []TokenAddress
	SearchTerms  []string
	MinLiquidity float64
}

// DefaultTokens returns lookups for the majors the publisher ships with.
func DefaultTokens() map[string]TokenConfig {
	return map[string]TokenConfig{
		"BTC": {
			Addresses: []TokenAddress{
				{Chain: "solana", Address: "3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh"},
				{Chain: "ethereum", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"},
			},
			SearchTerms:  []string{"WBTC", "Bitcoin", "BTC"},
			MinLiquidity: 100000,
		},
		"ETH": {
			Addresses: []TokenAddress{
				{Chain: "solana", Address: "7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs"},
				{Chain: "ethereum", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
			},
			SearchTerms:  []string{"WETH", "Ethereum", "ETH"},
			MinLiquidity: 100000,
		},
		"SOL": {
			Addresses: []TokenAddress{
				{Chain: "solana", Address: "So11111111111111111111111111111111111111112"},
				{Chain: "ethereum", Address: "0xD31a59c85aE9D8edEFeC411D448f90841571b89c"},
			},
			SearchTerms:  []string{"SOL", "Solana", "WSOL"},
			MinLiquidity: 50000,
		},
		"XLM": {
			Addresses: []TokenAddress{
				{Chain: "ethereum", Address: "0x0C10bF8FcB7Bf5412187A595ab97a3609160b5c6"},
			},
			SearchTerms:  []string{"XLM", "Stellar", "Stellar Lumens"},
			MinLiquidity: 25000,
		},
	}
}

// DexScreener picks the most liquid DEX pair for a symbol. Configured token
// addresses are looked up first; search results must have the requested
// symbol or its wrapped form as base token.
type DexScreener struct {
	BaseURL      string
	Client       *httpx.Client
	MinLiquidity float64
	// Tokens overrides lookups per upper-case symbol. Unlisted symbols
	// search for SYM and WSYM with MinLiquidity.
	Tokens map[string]TokenConfig
	// Now stamps FetchedAt; defaults to time.Now.
	Now func() time.Time
}

var _ application.QuoteSource = (*DexScreener)(nil)

type dsSearchResp struct {
	Pairs []dsPair `json:"pairs"`
}

type dsPair struct {
	ChainID   string `json:"chainId"`
	DexID     string `json:"dexId"`
	PairAddr  string `json:"pairAddress"`
	PriceUSD  string `json:"priceUsd"`
	BaseToken struct {
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
	Liquidity *struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume *struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
}

func (p dsPair) liquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

func (p dsPair) volume24h() float64 {
	if p.Volume == nil {
		return 0
	}
	return p.Volume.H24
}

func (d *DexScreener) Get(ctx context.Context, symbol string) (domain.Quote, error) {
	if d.BaseURL == "" {
		return domain.Quote{}, errors.New("dexscreener: missing base url")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Quote{}, errors.New("dexscreener: empty symbol")
	}
	cfg := d.tokenConfig(symbol)
	log := logx.WithFields(ctx).With(zap.String("symbol", symbol))

	var lastErr error
	for _, addr := range cfg.Addresses {
		pairs, err := d.tokenPairs(ctx, addr)
		if err != nil {
			lastErr = err
			log.Warn("dexscreener.token_lookup_failed", zap.String("chain", addr.Chain), zap.Error(err))
			continue
		}
		if best, ok := bestPair(pairs, "", cfg.MinLiquidity); ok {
			return d.quote(symbol, best)
		}
	}
	for _, term := range cfg.SearchTerms {
		pairs, err := d.search(ctx, term)
		if err != nil {
			lastErr = err
			log.Warn("dexscreener.search_failed", zap.String("term", term), zap.Error(err))
			continue
		}
		if best, ok := bestPair(pairs, symbol, cfg.MinLiquidity); ok {
			return d.quote(symbol, best)
		}
	}
	if lastErr != nil {
		return domain.Quote{}, fmt.Errorf("dexscreener %s: %w", symbol, lastErr)
	}
	return domain.Quote{}, fmt.Errorf("dexscreener %s: %w", symbol, ErrNoQuote)
}

func (d *DexScreener) tokenConfig(symbol string) TokenConfig {
	cfg, ok := d.Tokens[symbol]
	if !ok {
		cfg = TokenConfig{SearchTerms: []string{symbol, "W" + symbol}}
	}
	if cfg.MinLiquidity <= 0 {
		cfg.MinLiquidity = d.MinLiquidity
	}
	return cfg
}

func (d *DexScreener) quote(symbol string, best dsPair) (domain.Quote, error) {
	price, err := strconv.ParseFloat(best.PriceUSD, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("dexscreener: parse price %q: %w", best.PriceUSD, err)
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return domain.Quote{
		Symbol:    symbol,
		PriceUSD:  price,
		Source:    fmt.Sprintf("dexscreener:%s:%s", best.ChainID, best.DexID),
		Liquidity: best.liquidityUSD(),
		Volume24h: best.volume24h(),
		FetchedAt: now().UTC(),
	}, nil
}

// tokenPairs lists every pool trading the token. The endpoint answers with a bare JSON array.
func (d *DexScreener) tokenPairs(ctx context.Context, addr TokenAddress) ([]dsPair, error) {
	var pairs []dsPair
	path := dexScreenerTokensPath + "/" + url.PathEscape(addr.Chain) + "/" + url.PathEscape(addr.Address)
	if err := d.getJSON(ctx, path, nil, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (d *DexScreener) search(ctx context.Context, term string) ([]dsPair, error) {
	var body dsSearchResp
	if err := d.getJSON(ctx, dexScreenerSearchPath, url.Values{"q": {term}}, &body); err != nil {
		return nil, err
	}
	return body.Pairs, nil
}

func (d *DexScreener) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	client := d.Client
	if client == nil {
		client = &httpx.Client{}
	}
	return client.DoJSON(ctx, req, out)
}

// bestPair filters out pairs without a USD price, below minLiquidity, or
// quoting a different base token, then ranks by liquidity and 24h volume.
// An empty symbol skips the base token check.
func bestPair(pairs []dsPair, symbol string, minLiquidity float64) (dsPair, bool) {
	var valid []dsPair
	for _, p := range pairs {
		if p.PriceUSD == "" || p.liquidityUSD() <= 0 {
			continue
		}
		if p.liquidityUSD() < minLiquidity {
			continue
		}
		if symbol != "" && !matchesSymbol(p.BaseToken.Symbol, symbol) {
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return dsPair{}, false
	}
	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i], valid[j]
		diff := a.liquidityUSD() - b.liquidityUSD()
		if diff > liquidityTieUSD || diff < -liquidityTieUSD {
			return diff > 0
		}
		return a.volume24h() > b.volume24h()
	})
	return valid[0], true
}

func matchesSymbol(base, symbol string) bool {
	base = strings.ToUpper(base)
	return base == symbol || base == "W"+symbol
}
