package feed

import (
	"strings"
	"time"

	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/signal"
	"signaly.chapter42.de/a/internal/taapi"
)

// TTL entspricht dem Veröffentlichungsintervall von 15 Minuten.
const TTLSeconds = 900

type PayloadSettings struct {
	DonPeriod   int     `json:"donPeriod"`
	ATRMin      float64 `json:"atrMin"`
	EMASlopeEps float64 `json:"emaSlopeEps"`
	LowTF       string  `json:"lowTF"`
	HighTF      string  `json:"highTF"`
}

// Payload ist das veröffentlichte Feed-Dokument.
type Payload struct {
	Symbol     string             `json:"symbol"`
	Timestamp  string             `json:"timestamp"`
	FinalBias  signal.Bias        `json:"finalBias"`
	BiasReason string             `json:"biasReason"`
	Indicators map[string]float64 `json:"indicators"`
	Settings   PayloadSettings    `json:"settings"`
	TTLSec     int                `json:"ttl_sec"`
}

// BuildPayload setzt das Dokument aus Snapshots und Entscheidung zusammen.
// Der Timestamp ist UTC, sekundengenau, mit Z-Suffix.
func BuildPayload(cfg *data.FeedConfig, low *taapi.LowSnapshot, high *taapi.HighSnapshot, bias signal.Bias, reason string, now time.Time) Payload {
	return Payload{
		Symbol:     strings.ReplaceAll(cfg.Pair, "/", ""),
		Timestamp:  now.UTC().Format("2006-01-02T15:04:05") + "Z",
		FinalBias:  bias,
		BiasReason: reason,
		Indicators: map[string]float64{
			"donHigh":     low.DonHigh,
			"donLow":      low.DonLow,
			"atr":         low.ATR,
			"price":       low.Price,
			"ema200":      high.EMA200,
			"ema200Slope": high.EMA200Slope,
		},
		Settings: PayloadSettings{
			DonPeriod:   cfg.DonPeriod,
			ATRMin:      cfg.ATRMin,
			EMASlopeEps: cfg.EMASlopeEps,
			LowTF:       cfg.LowTF,
			HighTF:      cfg.HighTF,
		},
		TTLSec: TTLSeconds,
	}
}
