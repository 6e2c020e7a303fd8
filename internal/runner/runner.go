package runner

import "context"

// Runner führt einen Feed-Lauf aus und liefert die resultierende URL.
// Abbruch über den Context beendet den Lauf vorzeitig.
type Runner interface {
	Run(ctx context.Context) (string, error)
}
