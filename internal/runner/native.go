package runner

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/feed"
	"signaly.chapter42.de/a/internal/gist"
	"signaly.chapter42.de/a/internal/history"
	"signaly.chapter42.de/a/internal/logger"
	"signaly.chapter42.de/a/internal/signal"
	"signaly.chapter42.de/a/internal/taapi"
)

// NativeRunner holt die Indikatoren selbst, entscheidet den Bias,
// schreibt die History und veröffentlicht das Dokument im Gist.
type NativeRunner struct {
	cfg       *data.FeedConfig
	client    *taapi.Client
	publisher *gist.Publisher
	store     *history.Store
}

func NewNativeRunner(cfg *data.FeedConfig) *NativeRunner {
	return &NativeRunner{
		cfg:       cfg,
		client:    taapi.NewClient(cfg),
		publisher: gist.NewPublisher(cfg),
		store:     history.NewStore(cfg.HistoryDir),
	}
}

func (r *NativeRunner) Run(ctx context.Context) (string, error) {
	low, err := r.client.FetchLow(ctx)
	if err != nil {
		return "", err
	}
	high, err := r.client.FetchHigh(ctx)
	if err != nil {
		return "", err
	}

	bias, reason := signal.Decide(low, high, signal.Settings{
		ATRMin:      r.cfg.ATRMin,
		EMASlopeEps: r.cfg.EMASlopeEps,
	})
	logger.Log.Debug("Bias entschieden:",
		zap.String("bias", string(bias)), zap.String("reason", reason))

	payload := feed.BuildPayload(r.cfg, low, high, bias, reason, time.Now())

	if err := r.store.Write(payload); err != nil {
		return "", err
	}

	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	rawURL, err := r.publisher.Publish(ctx, content)
	if err != nil {
		return "", err
	}

	return rawURL, nil
}
