// Package clock abstracts wall-clock access so every "today" derivation in
// the domain layer can be pinned in tests.
package clock

import "time"

// Clock is the single time source consumed by the domain services.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant. Tests advance it explicitly.
type Fixed struct {
	Time time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{Time: t} }

func (f *Fixed) Now() time.Time { return f.Time }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Time = f.Time.Add(d) }

// AdvanceDays moves the fixed clock forward by n calendar days.
func (f *Fixed) AdvanceDays(n int) { f.Time = f.Time.AddDate(0, 0, n) }
