package testutil

import (
	"testing"
	"time"
)

func TestFixedClock_AdvancesOneSecond(t *testing.T) {
	c := NewFixedClock()

	first := c.Now()
	second := c.Now()

	if !first.Equal(Epoch) {
		t.Errorf("first tick = %v, want %v", first, Epoch)
	}
	if got := second.Sub(first); got != time.Second {
		t.Errorf("tick spacing = %v, want 1s", got)
	}
}

func TestFixedClock_Reset(t *testing.T) {
	c := NewFixedClock()
	c.Now()
	c.Now()
	c.Reset()

	if got := c.Now(); !got.Equal(Epoch) {
		t.Errorf("tick after reset = %v, want %v", got, Epoch)
	}
}

func TestFixedGenerator_Sequential(t *testing.T) {
	g := NewFixedGenerator()

	if got := g.NewTraceID(); got != "trace-0001" {
		t.Errorf("first trace id = %q", got)
	}
	if got := g.NewEnvID(); got != "env-0001" {
		t.Errorf("first env id = %q", got)
	}
	if got := g.NewTraceID(); got != "trace-0002" {
		t.Errorf("second trace id = %q", got)
	}
}
