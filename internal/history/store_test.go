package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"signaly.chapter42.de/a/internal/feed"
	"signaly.chapter42.de/a/internal/signal"
)

func TestWriteHistory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history_btc")
	store := NewStore(dir)

	p := feed.Payload{
		Symbol:     "BTCUSDT",
		Timestamp:  "2026-08-23T14:30:00Z",
		FinalBias:  signal.BiasLong,
		BiasReason: signal.ReasonBreakoutLong,
		TTLSec:     900,
	}
	assert.NoError(t, store.Write(p))

	// Eine Datei pro Lauf, benannt nach dem Timestamp
	raw, err := os.ReadFile(filepath.Join(dir, "2026-08-23T14:30:00Z.json"))
	assert.NoError(t, err)

	var restored feed.Payload
	assert.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, p.Symbol, restored.Symbol)
	assert.Equal(t, p.FinalBias, restored.FinalBias)
}

func TestWriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "history")
	store := NewStore(dir)

	assert.NoError(t, store.Write(feed.Payload{Timestamp: "2026-08-23T14:45:00Z"}))

	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}
