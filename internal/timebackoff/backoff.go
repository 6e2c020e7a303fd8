package timebackoff

import "time"

// Strategy liefert die Wartezeit vor einem erneuten Versuch.
type Strategy interface {
	CalculateBackoff(attempt int) time.Duration
}

type exponential struct {
	limit time.Duration
}

func NewExponentialBackoff(limit time.Duration) Strategy {
	return &exponential{limit: limit}
}

func (e *exponential) CalculateBackoff(attempt int) time.Duration {
	return Min(ExponentialBackoff(attempt), e.limit)
}

type sinus struct{}

func NewSinusBackoff() Strategy {
	return &sinus{}
}

func (s *sinus) CalculateBackoff(attempt int) time.Duration {
	return SinusBackoff(attempt)
}

// ForName wählt die konfigurierte Strategie, exponential ist der Standard.
func ForName(name string) Strategy {
	if name == "sinus" {
		return NewSinusBackoff()
	}
	return NewExponentialBackoff(MaxDelay)
}
