package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"PriceOracle/internal/model"
)

const defaultBybitURL = "https://api.bybit.com"

// quoteSuffixes are tried in order when resolving a base currency to a spot pair.
var quoteSuffixes = []string{"USDT", "USD", "USDC"}

// BybitFetcher implements Fetcher using the Bybit v5 public market API.
type BybitFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBybitFetcher creates a new fetcher with optional proxy support.
func NewBybitFetcher(baseURL, proxyURL string) *BybitFetcher {
	if baseURL == "" {
		baseURL = defaultBybitURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BybitFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

func (f *BybitFetcher) Name() string { return "bybit" }

// bybitResponse is the v5 envelope.
type bybitResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// candidatePairs lists the spot pairs to try for a symbol, most likely first.
func candidatePairs(symbol string) []string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, q := range quoteSuffixes {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return []string{symbol}
		}
	}
	pairs := make([]string, len(quoteSuffixes))
	for i, q := range quoteSuffixes {
		pairs[i] = symbol + q
	}
	return pairs
}

func (f *BybitFetcher) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := f.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("bybit fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("bybit read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bybit: status %d, body: %s", resp.StatusCode, string(body))
	}

	var env bybitResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("bybit decode: %w", err)
	}
	if env.RetCode != 0 {
		return fmt.Errorf("bybit api error %d: %s", env.RetCode, env.RetMsg)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("bybit decode result: %w", err)
	}
	return nil
}

// fetchKlines returns bars for the first candidate pair that has data.
func (f *BybitFetcher) fetchKlines(ctx context.Context, symbol, interval string, limit int) (string, []model.OHLCV, error) {
	var lastErr error
	for _, pair := range candidatePairs(symbol) {
		params := url.Values{}
		params.Set("category", "spot")
		params.Set("symbol", pair)
		params.Set("interval", interval)
		params.Set("limit", strconv.Itoa(limit))

		var result struct {
			List [][]string `json:"list"`
		}
		if err := f.get(ctx, "/v5/market/kline", params, &result); err != nil {
			lastErr = err
			continue
		}
		if len(result.List) == 0 {
			continue
		}
		bars, err := parseKlines(result.List)
		if err != nil {
			lastErr = err
			continue
		}
		return pair, bars, nil
	}
	if lastErr != nil {
		return "", nil, lastErr
	}
	return "", nil, nil
}

// parseKlines converts [start, open, high, low, close, volume, turnover] rows.
// Bybit returns newest first; the result is chronological.
func parseKlines(rows [][]string) ([]model.OHLCV, error) {
	bars := make([]model.OHLCV, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("bybit: malformed kline row %v", row)
		}
		var nums [6]float64
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("bybit: parse kline field %d: %w", i, err)
			}
			nums[i] = v
		}
		bars = append(bars, model.OHLCV{
			Time:   time.UnixMilli(int64(nums[0])).UTC(),
			Open:   nums[1],
			High:   nums[2],
			Low:    nums[3],
			Close:  nums[4],
			Volume: nums[5],
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *BybitFetcher) FetchDailyCloses(ctx context.Context, symbol string, days int) (model.PriceSeries, error) {
	pair, bars, err := f.fetchKlines(ctx, symbol, "D", days)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if pair == "" {
		pair = strings.ToUpper(symbol)
	}
	return model.NewPriceSeries(pair, bars), nil
}

func (f *BybitFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	_, bars, err := f.fetchKlines(ctx, symbol, interval, limit)
	return bars, err
}

func (f *BybitFetcher) SearchSymbols(ctx context.Context, query string) ([]model.SymbolInfo, error) {
	params := url.Values{}
	params.Set("category", "spot")
	var result struct {
		List []struct {
			Symbol string `json:"symbol"`
		} `json:"list"`
	}
	if err := f.get(ctx, "/v5/market/tickers", params, &result); err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	seen := make(map[string]bool)
	var out []model.SymbolInfo
	for _, t := range result.List {
		base := baseCurrency(t.Symbol)
		if base == "" || seen[base] {
			continue
		}
		if !strings.Contains(strings.ToLower(base), q) && !strings.Contains(strings.ToLower(t.Symbol), q) {
			continue
		}
		seen[base] = true
		out = append(out, model.SymbolInfo{Code: base, Name: base, Pair: t.Symbol})
		if len(out) == maxSearchResults {
			break
		}
	}
	return out, nil
}

// baseCurrency strips the first matching quote suffix, e.g. BTCUSDT -> BTC.
func baseCurrency(pair string) string {
	for _, q := range []string{"USDT", "USDC", "USD"} {
		if strings.HasSuffix(pair, q) {
			return strings.TrimSuffix(pair, q)
		}
	}
	return pair
}
