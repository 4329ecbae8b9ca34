package behavior

import "sync/atomic"

// Instrumented wraps a strategy and counts its decisions without touching
// the wrapped implementation. Compose it at the call site; there is no
// decorator chain to subclass.
type Instrumented struct {
	Strategy

	decisions atomic.Int64
	boosts    atomic.Int64
	jumps     atomic.Int64
}

// Instrument wraps s. A nil s yields a nil wrapper.
func Instrument(s Strategy) *Instrumented {
	if s == nil {
		return nil
	}
	return &Instrumented{Strategy: s}
}

func (i *Instrumented) DecideDirection(v View) {
	i.decisions.Add(1)
	i.Strategy.DecideDirection(v)
}

func (i *Instrumented) ShouldBoost() bool {
	b := i.Strategy.ShouldBoost()
	if b {
		i.boosts.Add(1)
	}
	return b
}

func (i *Instrumented) ShouldJump() bool {
	j, ok := i.Strategy.(Jumper)
	if !ok {
		return false
	}
	res := j.ShouldJump()
	if res {
		i.jumps.Add(1)
	}
	return res
}

// Counts returns the totals since construction.
func (i *Instrumented) Counts() (decisions, boosts, jumps int64) {
	return i.decisions.Load(), i.boosts.Load(), i.jumps.Load()
}
