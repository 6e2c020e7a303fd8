package gist

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

// Publisher aktualisiert eine Datei in einem GitHub-Gist per PATCH
// und liefert deren raw_url zurück.
type Publisher struct {
	cfg        *data.FeedConfig
	httpClient *http.Client
	backoff    timebackoff.Strategy
}

func NewPublisher(cfg *data.FeedConfig) *Publisher {
	return &Publisher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		backoff:    timebackoff.ForName(cfg.Backoff),
	}
}

type gistFile struct {
	Content string `json:"content"`
}

type gistPatch struct {
	Files map[string]gistFile `json:"files"`
}

type gistResponse struct {
	Files map[string]struct {
		RawURL string `json:"raw_url"`
	} `json:"files"`
}

func (p *Publisher) Publish(ctx context.Context, content []byte) (string, error) {
	endpoint, err := tmpl.RenderEndpoint(p.cfg.ParsedGistTpl, struct{ ID string }{ID: p.cfg.GistID})
	if err != nil {
		logger.Log.Warn("Fehler beim Rendern des Endpunktes:", zap.Error(err))
		return "", err
	}

	body := gistPatch{
		Files: map[string]gistFile{
			p.cfg.FileName: {Content: string(content)},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	fullURL := p.cfg.GithubBaseURL + endpoint

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := p.backoff.CalculateBackoff(attempt)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return "", ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, fullURL, bytes.NewReader(payload))
		if err != nil {
			logger.Log.Error("Error while generating request:", zap.Error(err))
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", "Signaly/1.0")

		if p.cfg.AuthProvider != nil {
			authHeader, err := p.cfg.AuthProvider.GetAuthHeader()
			if err != nil {
				logger.Log.Warn("Error while generating AuthHeaders:", zap.Error(err))
				return "", err
			}
			req.Header.Set("Authorization", authHeader)
		}

		// Transportfehler sind genauso transient wie 429/5xx
		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logger.Log.Warn("Gist-API nicht erreichbar:", zap.Error(err), zap.Int("attempt", attempt))
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var parsed gistResponse
			if err := json.Unmarshal(respBody, &parsed); err != nil {
				return "", fmt.Errorf("gist response: %w", err)
			}

			file, ok := parsed.Files[p.cfg.FileName]
			if !ok || file.RawURL == "" {
				return "", fmt.Errorf("gist response enthält keine raw_url für %s", p.cfg.FileName)
			}
			return file.RawURL, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("gist patch %s", resp.Status)
			logger.Log.Warn("Gist-API antwortet transient fehlerhaft:",
				zap.String("status", resp.Status), zap.Int("attempt", attempt))
			continue
		}

		logger.Log.Error("Fehler beim Aktualisieren des Gists:",
			zap.String("status", resp.Status), zap.String("body", string(respBody)))
		return "", fmt.Errorf("gist patch %s: %s", resp.Status, string(respBody))
	}

	return "", fmt.Errorf("gist patch nach %d Versuchen aufgegeben: %w", maxRetries+1, lastErr)
}
