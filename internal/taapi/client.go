package taapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/logger"
	"signaly.chapter42.de/a/internal/timebackoff"
	"signaly.chapter42.de/a/internal/tmpl"
)

const (
	requestTimeout = 12 * time.Second
	maxRetries     = 3
)

// LowSnapshot sind die Indikatoren des Trigger-Timeframes,
// bezogen auf die letzte geschlossene Kerze.
type LowSnapshot struct {
	DonHigh float64 `json:"donHigh"`
	DonLow  float64 `json:"donLow"`
	ATR     float64 `json:"atr"`
	Price   float64 `json:"price"`
}

// HighSnapshot ist der Trendfilter des höheren Timeframes.
type HighSnapshot struct {
	EMA200      float64 `json:"ema200"`
	EMA200Slope float64 `json:"ema200Slope"`
}

type Client struct {
	cfg        *data.FeedConfig
	httpClient *http.Client
	backoff    timebackoff.Strategy
}

func NewClient(cfg *data.FeedConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		backoff:    timebackoff.ForName(cfg.Backoff),
	}
}

type indicatorSpec struct {
	ID        string `json:"id"`
	Indicator string `json:"indicator"`
	Period    int    `json:"period,omitempty"`
	Backtrack *int   `json:"backtrack,omitempty"`
}

type bulkConstruct struct {
	Exchange   string          `json:"exchange"`
	Symbol     string          `json:"symbol"`
	Interval   string          `json:"interval"`
	Indicators []indicatorSpec `json:"indicators"`
}

type bulkRequest struct {
	Secret    string        `json:"secret"`
	Construct bulkConstruct `json:"construct"`
}

type bulkResponse struct {
	Data []struct {
		ID     string          `json:"id"`
		Result json.RawMessage `json:"result"`
	} `json:"data"`
}

type scalarResult struct {
	Value float64 `json:"value"`
}

type channelResult struct {
	Value struct {
		Upper float64 `json:"upper"`
		Lower float64 `json:"lower"`
	} `json:"value"`
}

func backtrack(n int) *int { return &n }

// FetchLow holt Donchian-Kanal, ATR und Preis des Trigger-Timeframes.
// backtrack=1 bei Donchian und ATR, damit nur geschlossene Kerzen zählen.
func (c *Client) FetchLow(ctx context.Context) (*LowSnapshot, error) {
	indicators := []indicatorSpec{
		{ID: "don", Indicator: "donchianchannels", Period: c.cfg.DonPeriod, Backtrack: backtrack(1)},
		{ID: "atr", Indicator: "atr", Period: 14, Backtrack: backtrack(1)},
		{ID: "price", Indicator: "price"},
	}

	results, err := c.bulk(ctx, c.cfg.LowTF, indicators)
	if err != nil {
		return nil, err
	}

	var don channelResult
	if err := json.Unmarshal(results["don"], &don); err != nil {
		return nil, fmt.Errorf("donchian result: %w", err)
	}
	var atr, price scalarResult
	if err := json.Unmarshal(results["atr"], &atr); err != nil {
		return nil, fmt.Errorf("atr result: %w", err)
	}
	if err := json.Unmarshal(results["price"], &price); err != nil {
		return nil, fmt.Errorf("price result: %w", err)
	}

	return &LowSnapshot{
		DonHigh: don.Value.Upper,
		DonLow:  don.Value.Lower,
		ATR:     atr.Value,
		Price:   price.Value,
	}, nil
}

// FetchHigh holt EMA-200 jetzt und eine Kerze zurück für die Steigung.
func (c *Client) FetchHigh(ctx context.Context) (*HighSnapshot, error) {
	indicators := []indicatorSpec{
		{ID: "ema200", Indicator: "ema", Period: 200, Backtrack: backtrack(0)},
		{ID: "ema200prev", Indicator: "ema", Period: 200, Backtrack: backtrack(1)},
	}

	results, err := c.bulk(ctx, c.cfg.HighTF, indicators)
	if err != nil {
		return nil, err
	}

	var emaNow, emaPrev scalarResult
	if err := json.Unmarshal(results["ema200"], &emaNow); err != nil {
		return nil, fmt.Errorf("ema200 result: %w", err)
	}
	if err := json.Unmarshal(results["ema200prev"], &emaPrev); err != nil {
		return nil, fmt.Errorf("ema200prev result: %w", err)
	}

	slope := 0.0
	if emaPrev.Value != 0 {
		slope = (emaNow.Value - emaPrev.Value) / emaPrev.Value
	}

	return &HighSnapshot{
		EMA200:      emaNow.Value,
		EMA200Slope: slope,
	}, nil
}

func (c *Client) bulk(ctx context.Context, interval string, indicators []indicatorSpec) (map[string]json.RawMessage, error) {
	endpoint, err := tmpl.RenderEndpoint(c.cfg.ParsedBulkTpl, nil)
	if err != nil {
		logger.Log.Warn("Fehler beim Rendern des Endpunktes:", zap.Error(err))
		return nil, err
	}

	body := bulkRequest{
		Secret: c.cfg.TaapiSecret,
		Construct: bulkConstruct{
			Exchange:   "binance",
			Symbol:     c.cfg.Pair,
			Interval:   interval,
			Indicators: indicators,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	fullURL := c.cfg.TaapiBaseURL + endpoint

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff.CalculateBackoff(attempt)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
		if err != nil {
			logger.Log.Warn("Error while generating request:", zap.Error(err))
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Signaly/1.0")

		// Transportfehler sind genauso transient wie 429/5xx
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logger.Log.Warn("TAAPI nicht erreichbar:", zap.Error(err), zap.Int("attempt", attempt))
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var parsed bulkResponse
			if err := json.Unmarshal(respBody, &parsed); err != nil {
				return nil, fmt.Errorf("bulk response: %w", err)
			}
			results := make(map[string]json.RawMessage, len(parsed.Data))
			for _, r := range parsed.Data {
				results[r.ID] = r.Result
			}
			return results, nil
		}

		// 429 und 5xx sind transient, alles andere ist endgültig
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("taapi bulk %s", resp.Status)
			logger.Log.Warn("TAAPI antwortet transient fehlerhaft:",
				zap.String("status", resp.Status), zap.Int("attempt", attempt))
			continue
		}

		return nil, fmt.Errorf("taapi bulk %s: %s", resp.Status, string(respBody))
	}

	return nil, fmt.Errorf("taapi bulk nach %d Versuchen aufgegeben: %w", maxRetries+1, lastErr)
}
