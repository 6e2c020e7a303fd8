package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/logger"
)

// maxKept begrenzt die im Speicher gehaltene Laufhistorie.
const maxKept = 100

// Registry hält die Läufe dieses Prozesses, jüngster zuletzt.
type Registry struct {
	mu   sync.Mutex
	runs []data.Run
}

func New() *Registry {
	return &Registry{}
}

// Begin legt einen neuen laufenden Eintrag an und liefert dessen UID.
func (r *Registry) Begin(trigger data.Trigger) string {
	run := data.Run{
		UID:       uuid.NewString(),
		Trigger:   trigger,
		Status:    data.RunRunning,
		StartedAt: time.Now(),
	}

	r.mu.Lock()
	r.runs = append(r.runs, run)
	if len(r.runs) > maxKept {
		r.runs = r.runs[len(r.runs)-maxKept:]
	}
	r.mu.Unlock()

	logger.Log.Info("Neuer Lauf gestartet:",
		zap.String("uid", run.UID), zap.String("trigger", string(trigger)))
	return run.UID
}

// Finish schließt den Lauf ab. Bei Erfolg wird die Ausgabezeile
// unverändert übernommen und geloggt.
func (r *Registry) Finish(uid string, status data.RunStatus, outputURL string, errText string) {
	r.mu.Lock()
	for i := range r.runs {
		if r.runs[i].UID == uid {
			r.runs[i].Status = status
			r.runs[i].FinishedAt = time.Now()
			r.runs[i].OutputURL = outputURL
			r.runs[i].Error = errText
			break
		}
	}
	r.mu.Unlock()

	switch status {
	case data.RunSucceeded:
		logger.Log.Info("Lauf erfolgreich:",
			zap.String("uid", uid), zap.String("output_url", outputURL))
	case data.RunCanceled:
		logger.Log.Info("Lauf abgebrochen (überholt):", zap.String("uid", uid))
	default:
		logger.Log.Error("Lauf fehlgeschlagen:",
			zap.String("uid", uid), zap.String("error", errText))
	}
}

func (r *Registry) List() []data.Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]data.Run, len(r.runs))
	copy(out, r.runs)
	return out
}

// Latest liefert den jüngsten Lauf, false wenn noch keiner existiert.
func (r *Registry) Latest() (data.Run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs) == 0 {
		return data.Run{}, false
	}
	return r.runs[len(r.runs)-1], true
}

func (r *Registry) Replace(runs []data.Run) {
	r.mu.Lock()
	r.runs = runs
	r.mu.Unlock()
}
