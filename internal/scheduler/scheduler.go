package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/logger"
	"signaly.chapter42.de/a/internal/registry"
	"signaly.chapter42.de/a/internal/runner"
)

// Scheduler startet Läufe im festen Takt oder auf manuellen Anstoß.
// Pro Job-Identität ist höchstens ein Lauf aktiv: ein neuer Trigger
// bricht einen noch laufenden Vorgänger ab und wartet, bis der sich
// abgemeldet hat, bevor der neue Lauf beginnt.
type Scheduler struct {
	interval time.Duration
	runner   runner.Runner
	reg      *registry.Registry

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(interval time.Duration, r runner.Runner, reg *registry.Registry) *Scheduler {
	return &Scheduler{
		interval: interval,
		runner:   r,
		reg:      reg,
	}
}

// Start betreibt die Ticker-Schleife bis der Context endet. Der
// Context ist zugleich der Lebenszyklus aller Läufe, auch manueller.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		logger.Log.Info("Scheduler gestartet:", zap.Duration("interval", s.interval))
		for {
			select {
			case <-ctx.Done():
				logger.Log.Info("Scheduler beendet.")
				return
			case <-ticker.C:
				s.Trigger(data.TriggerSchedule)
			}
		}
	}()
}

// Trigger startet einen Lauf. Ein noch aktiver Vorgänger wird
// abgebrochen (Status canceled, nicht failed). Manuelle Trigger
// nehmen exakt denselben Weg wie geplante.
func (s *Scheduler) Trigger(trigger data.Trigger) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.baseCtx
	if base == nil {
		base = context.Background()
	}

	if s.done != nil {
		select {
		case <-s.done:
			// Vorgänger ist bereits fertig
		default:
			logger.Log.Warn("Vorheriger Lauf noch aktiv, wird überholt.")
			s.cancel()
			<-s.done // warten bis der Vorgänger sich abgemeldet hat
		}
	}

	runCtx, cancel := context.WithCancel(base)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	uid := s.reg.Begin(trigger)
	go s.execute(runCtx, uid, done)

	return uid
}

func (s *Scheduler) execute(ctx context.Context, uid string, done chan struct{}) {
	defer close(done)

	outputURL, err := s.runner.Run(ctx)
	switch {
	case err == nil:
		s.reg.Finish(uid, data.RunSucceeded, outputURL, "")
	case errors.Is(err, context.Canceled):
		s.reg.Finish(uid, data.RunCanceled, "", err.Error())
	default:
		s.reg.Finish(uid, data.RunFailed, "", err.Error())
	}
}

// Drain wartet beim Herunterfahren auf den aktiven Lauf.
func (s *Scheduler) Drain() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}
