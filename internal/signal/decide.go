package signal

import "signaly.chapter42.de/a/internal/taapi"

type Bias string

const (
	BiasLong  Bias = "long"
	BiasShort Bias = "short"
	BiasFlat  Bias = "flat"
)

const (
	ReasonBreakoutLong  = "don-breakout-long"
	ReasonBreakoutShort = "don-breakout-short"
	ReasonNoSetup       = "no-setup"
)

// Settings sind die Schwellwerte der Entscheidungslogik.
type Settings struct {
	ATRMin      float64 // Mindest-Volatilität als ATR/Preis
	EMASlopeEps float64 // optionales Veto bei flachem Trend
}

// VolGate prüft, ob genug Volatilität für ein Setup vorhanden ist.
func VolGate(low *taapi.LowSnapshot, atrMin float64) bool {
	if low.Price == 0 {
		return false
	}
	return low.ATR/low.Price >= atrMin
}

// Decide bestimmt den Bias aus Donchian-Breakout und EMA-200-Trendfilter.
// Ohne Volatilität oder ohne Steigung gibt es kein Setup.
func Decide(low *taapi.LowSnapshot, high *taapi.HighSnapshot, s Settings) (Bias, string) {
	up := low.Price > high.EMA200
	down := low.Price < high.EMA200
	slopeOK := abs(high.EMA200Slope) >= s.EMASlopeEps
	breakoutUp := low.Price >= low.DonHigh
	breakoutDown := low.Price <= low.DonLow

	if VolGate(low, s.ATRMin) && slopeOK {
		if up && breakoutUp {
			return BiasLong, ReasonBreakoutLong
		}
		if down && breakoutDown {
			return BiasShort, ReasonBreakoutShort
		}
	}
	return BiasFlat, ReasonNoSetup
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
