package data

import "time"

// Trigger beschreibt, wodurch ein Lauf gestartet wurde.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCanceled  RunStatus = "canceled"
)

// Run ist ein einzelner Feed-Lauf samt Ergebnis.
// OutputURL ist die unveränderte Zeile, die der Runner geliefert hat.
type Run struct {
	UID        string    `json:"uid"`
	Trigger    Trigger   `json:"trigger"`
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	OutputURL  string    `json:"output_url,omitempty"`
	Error      string    `json:"error,omitempty"`
}
