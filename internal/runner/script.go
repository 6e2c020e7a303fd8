package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/logger"
)

var ErrNoOutput = errors.New("script hat keine Ausgabezeile geliefert")

// ScriptRunner führt das externe Feed-Programm ohne Argumente aus.
// Die drei Secrets gehen als Umgebungsvariablen mit; die erste
// nicht-leere Stdout-Zeile wird unverändert als Ergebnis übernommen.
type ScriptRunner struct {
	cfg *data.FeedConfig
}

func NewScriptRunner(cfg *data.FeedConfig) *ScriptRunner {
	return &ScriptRunner{cfg: cfg}
}

func (r *ScriptRunner) Run(ctx context.Context) (string, error) {
	// Setup-Fehler (Skript fehlt) getrennt vom Ausführungsfehler melden
	if _, err := os.Stat(r.cfg.ScriptPath); err != nil {
		return "", fmt.Errorf("script nicht ausführbar: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.cfg.ScriptPath)
	cmd.Env = append(os.Environ(),
		"TAAPI_SECRET="+r.cfg.TaapiSecret,
		"GIST_ID="+r.cfg.GistID,
		"GIST_TOKEN="+r.cfg.GistToken,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Log.Error("Script fehlgeschlagen:",
			zap.String("path", r.cfg.ScriptPath),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err))
		return "", fmt.Errorf("script %s: %w (stderr: %s)",
			r.cfg.ScriptPath, err, strings.TrimSpace(stderr.String()))
	}

	line, extra := firstLine(stdout.String())
	if line == "" {
		return "", ErrNoOutput
	}
	if extra {
		// Mehrzeilige Ausgabe: erste Zeile gewinnt, Rest nur ins Log.
		logger.Log.Warn("Script hat mehr als eine Zeile geliefert:",
			zap.String("path", r.cfg.ScriptPath))
	}

	return line, nil
}

// firstLine liefert die erste nicht-leere, getrimmte Zeile und ob
// danach noch weitere nicht-leere Zeilen folgen.
func firstLine(out string) (string, bool) {
	var first string
	extra := false
	for _, l := range strings.Split(out, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if first == "" {
			first = l
		} else {
			extra = true
			break
		}
	}
	return first, extra
}
