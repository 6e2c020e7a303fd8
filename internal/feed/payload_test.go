package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/signal"
	"signaly.chapter42.de/a/internal/taapi"
)

func testFeedConfig() *data.FeedConfig {
	return &data.FeedConfig{
		Pair:        "BTC/USDT",
		LowTF:       "15m",
		HighTF:      "4h",
		DonPeriod:   20,
		ATRMin:      0.003,
		EMASlopeEps: 0.0,
	}
}

func TestBuildPayload(t *testing.T) {
	low := &taapi.LowSnapshot{DonHigh: 100_000, DonLow: 95_000, ATR: 400, Price: 100_500}
	high := &taapi.HighSnapshot{EMA200: 98_000, EMA200Slope: 0.002}
	now := time.Date(2026, 8, 23, 14, 30, 0, 123456789, time.UTC)

	p := BuildPayload(testFeedConfig(), low, high, signal.BiasLong, signal.ReasonBreakoutLong, now)

	// Symbol ohne Schrägstrich, Timestamp sekundengenau mit Z
	assert.Equal(t, "BTCUSDT", p.Symbol)
	assert.Equal(t, "2026-08-23T14:30:00Z", p.Timestamp)
	assert.Equal(t, signal.BiasLong, p.FinalBias)
	assert.Equal(t, signal.ReasonBreakoutLong, p.BiasReason)
	assert.Equal(t, 900, p.TTLSec)

	assert.Equal(t, 100_000.0, p.Indicators["donHigh"])
	assert.Equal(t, 95_000.0, p.Indicators["donLow"])
	assert.Equal(t, 400.0, p.Indicators["atr"])
	assert.Equal(t, 100_500.0, p.Indicators["price"])
	assert.Equal(t, 98_000.0, p.Indicators["ema200"])
	assert.Equal(t, 0.002, p.Indicators["ema200Slope"])

	assert.Equal(t, 20, p.Settings.DonPeriod)
	assert.Equal(t, "15m", p.Settings.LowTF)
	assert.Equal(t, "4h", p.Settings.HighTF)
}

func TestPayloadJSONKeys(t *testing.T) {
	low := &taapi.LowSnapshot{}
	high := &taapi.HighSnapshot{}
	p := BuildPayload(testFeedConfig(), low, high, signal.BiasFlat, signal.ReasonNoSetup, time.Now())

	raw, err := json.Marshal(p)
	assert.NoError(t, err)

	var m map[string]any
	assert.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"symbol", "timestamp", "finalBias", "biasReason", "indicators", "settings", "ttl_sec"} {
		assert.Contains(t, m, key)
	}
}

func TestBuildPayloadLocalTime(t *testing.T) {
	// Nicht-UTC-Zeiten werden nach UTC konvertiert
	loc := time.FixedZone("CEST", 2*3600)
	now := time.Date(2026, 8, 23, 16, 30, 0, 0, loc)

	p := BuildPayload(testFeedConfig(), &taapi.LowSnapshot{}, &taapi.HighSnapshot{}, signal.BiasFlat, signal.ReasonNoSetup, now)
	assert.Equal(t, "2026-08-23T14:30:00Z", p.Timestamp)
}
