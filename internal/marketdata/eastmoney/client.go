// Package eastmoney is the HTTP client for the EastMoney quote service:
// real-time quotes, historical klines, market indices, and keyword search.
//
// The upstream reports prices in fen; everything here is converted to
// yuan before leaving the package. Transient fetch failures are retried
// with capped exponential backoff; retry policy lives in this
// collaborator, never in the ledger or strategy engine.
package eastmoney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpillora/backoff"

	"papertrader/internal/model"
)

// ErrUnknownMarket rejects stock codes outside the Shanghai (6xxxxx) and
// Shenzhen (0xxxxx/3xxxxx) code spaces.
var ErrUnknownMarket = errors.New("stock code not in a known market")

const (
	defaultTimeout = 10 * time.Second
	maxAttempts    = 3

	quoteFields = "f43,f44,f45,f46,f47,f48,f49,f50,f51,f52,f57,f58,f60,f107,f116,f117,f168,f169,f170"
	indexFields = "f43,f44,f45,f46,f60,f170"
	klineField1 = "f1,f2,f3,f4,f5,f6"
	klineField2 = "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61"
)

// Config configures the EastMoney client.
type Config struct {
	QuoteBaseURL  string // e.g. "http://push2.eastmoney.com/api/qt"
	KlineBaseURL  string // e.g. "https://push2his.eastmoney.com/api/qt"
	SearchBaseURL string // e.g. "http://searchapi.eastmoney.com/api/suggest/get"
	Timeout       time.Duration
}

// Client fetches quotes and history over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New creates an EastMoney client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// secID maps a bare stock code to the upstream's "market.code" form:
// Shanghai codes start with 6, Shenzhen with 0 or 3.
func secID(code string) (string, error) {
	switch {
	case strings.HasPrefix(code, "6"):
		return "1." + code, nil
	case strings.HasPrefix(code, "0"), strings.HasPrefix(code, "3"):
		return "0." + code, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMarket, code)
}

// periodKLT maps a period name to the upstream kline type.
func periodKLT(period string) string {
	switch period {
	case "week":
		return "102"
	case "month":
		return "103"
	default:
		return "101" // day
	}
}

// getJSON performs a GET with retries and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, v any) error {
	b := &backoff.Backoff{
		Min:    200 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Duration()):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("eastmoney: unexpected status %s", resp.Status)
			continue
		}
		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("eastmoney: decode response: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}

type quotePayload struct {
	Data *struct {
		LastPrice float64 `json:"f43"`
		High      float64 `json:"f44"`
		Low       float64 `json:"f45"`
		Open      float64 `json:"f46"`
		Volume    int64   `json:"f47"`
		Amount    float64 `json:"f48"`
		Name      string  `json:"f58"`
		PreClose  float64 `json:"f60"`
		Timestamp int64   `json:"f107"`
		Change    float64 `json:"f169"`
		ChangePct float64 `json:"f170"`
	} `json:"data"`
}

// Quote returns the current quote for a stock code.
func (c *Client) Quote(ctx context.Context, code string) (*model.Quote, error) {
	sid, err := secID(code)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("secid", sid)
	params.Set("fields", quoteFields)

	var payload quotePayload
	if err := c.getJSON(ctx, c.cfg.QuoteBaseURL+"/stock/get", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", code, err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("fetch quote %s: empty response", code)
	}

	d := payload.Data
	return &model.Quote{
		StockCode:     code,
		StockName:     d.Name,
		CurrentPrice:  d.LastPrice / 100,
		OpenPrice:     d.Open / 100,
		HighPrice:     d.High / 100,
		LowPrice:      d.Low / 100,
		PreClose:      d.PreClose / 100,
		Volume:        d.Volume,
		Amount:        d.Amount,
		Change:        d.Change / 100,
		ChangePercent: d.ChangePct / 100,
		Timestamp:     d.Timestamp,
	}, nil
}

type klinePayload struct {
	Data *struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

// History returns up to count historical bars, oldest to newest.
// period is "day", "week", or "month".
func (c *Client) History(ctx context.Context, code, period string, count int) ([]model.Bar, error) {
	sid, err := secID(code)
	if err != nil {
		return nil, err
	}
	return c.fetchKlines(ctx, sid, period, count, "1")
}

// IndexHistory returns historical bars for a market index.
func (c *Client) IndexHistory(ctx context.Context, indexCode, period string, count int) ([]model.Bar, error) {
	// Indices always live under market 1 and are never price-adjusted.
	return c.fetchKlines(ctx, "1."+indexCode, period, count, "0")
}

func (c *Client) fetchKlines(ctx context.Context, sid, period string, count int, fqt string) ([]model.Bar, error) {
	params := url.Values{}
	params.Set("secid", sid)
	params.Set("fields1", klineField1)
	params.Set("fields2", klineField2)
	params.Set("klt", periodKLT(period))
	params.Set("fqt", fqt)
	params.Set("end", time.Now().Format("20060102"))
	params.Set("lmt", strconv.Itoa(count))

	var payload klinePayload
	if err := c.getJSON(ctx, c.cfg.KlineBaseURL+"/stock/kline/get", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", sid, err)
	}
	if payload.Data == nil {
		return nil, nil
	}

	bars := make([]model.Bar, 0, len(payload.Data.Klines))
	for _, kline := range payload.Data.Klines {
		bar, ok := parseKline(kline)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseKline splits one comma-separated kline row:
// date,open,close,high,low,volume,amount,...
func parseKline(kline string) (model.Bar, bool) {
	parts := strings.Split(kline, ",")
	if len(parts) < 7 {
		return model.Bar{}, false
	}
	open, err1 := strconv.ParseFloat(parts[1], 64)
	close, err2 := strconv.ParseFloat(parts[2], 64)
	high, err3 := strconv.ParseFloat(parts[3], 64)
	low, err4 := strconv.ParseFloat(parts[4], 64)
	volume, err5 := strconv.ParseInt(parts[5], 10, 64)
	amount, err6 := strconv.ParseFloat(parts[6], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return model.Bar{}, false
	}

	bar := model.Bar{
		Date:   parts[0],
		Open:   open,
		Close:  close,
		High:   high,
		Low:    low,
		Volume: volume,
		Amount: amount,
		Change: close - open,
	}
	if open > 0 {
		bar.ChangePercent = (close - open) / open * 100
	}
	return bar, true
}

type indexPayload struct {
	Data *struct {
		LastPrice float64 `json:"f43"`
		High      float64 `json:"f44"`
		Low       float64 `json:"f45"`
		Open      float64 `json:"f46"`
		PreClose  float64 `json:"f60"`
		ChangePct float64 `json:"f170"`
	} `json:"data"`
}

// Index returns the current quote for a market index (default Shanghai
// Composite, 000001).
func (c *Client) Index(ctx context.Context, indexCode string) (*model.IndexQuote, error) {
	params := url.Values{}
	params.Set("secid", "1."+indexCode)
	params.Set("fields", indexFields)

	var payload indexPayload
	if err := c.getJSON(ctx, c.cfg.QuoteBaseURL+"/stock/get", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch index %s: %w", indexCode, err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("fetch index %s: empty response", indexCode)
	}

	d := payload.Data
	return &model.IndexQuote{
		IndexCode:     indexCode,
		CurrentPrice:  d.LastPrice / 100,
		OpenPrice:     d.Open / 100,
		HighPrice:     d.High / 100,
		LowPrice:      d.Low / 100,
		PreClose:      d.PreClose / 100,
		ChangePercent: d.ChangePct / 100,
	}, nil
}

type searchPayload struct {
	QuotationCodeTable struct {
		Data []struct {
			Code   string `json:"Code"`
			Name   string `json:"Name"`
			Market string `json:"Market"`
		} `json:"Data"`
	} `json:"QuotationCodeTable"`
}

// Search returns up to 10 stocks matching a code or name keyword.
func (c *Client) Search(ctx context.Context, keyword string) ([]model.StockMatch, error) {
	params := url.Values{}
	params.Set("input", keyword)
	params.Set("type", "14")

	var payload searchPayload
	if err := c.getJSON(ctx, c.cfg.SearchBaseURL, params, &payload); err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	matches := make([]model.StockMatch, 0, len(payload.QuotationCodeTable.Data))
	for _, item := range payload.QuotationCodeTable.Data {
		matches = append(matches, model.StockMatch{
			StockCode: item.Code,
			StockName: item.Name,
			Market:    item.Market,
		})
		if len(matches) == 10 {
			break
		}
	}
	return matches, nil
}
