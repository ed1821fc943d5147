package profiler

import (
	"testing"
	"time"
)

func TestRecordStageAccumulates(t *testing.T) {
	p := NewProfiler()
	p.RecordStage("units_simulate", 2*time.Millisecond)
	p.RecordStage("units_simulate", 3*time.Millisecond)
	p.RecordStage("minimap", time.Millisecond)

	stages := p.Stages()
	if stages["units_simulate"] != 5*time.Millisecond {
		t.Errorf("units_simulate = %v, want 5ms", stages["units_simulate"])
	}
	if stages["minimap"] != time.Millisecond {
		t.Errorf("minimap = %v, want 1ms", stages["minimap"])
	}
}

func TestTickResetsAfterInterval(t *testing.T) {
	p := NewProfiler()
	p.SetInterval(time.Hour)
	p.RecordStage("draw", time.Millisecond)
	if p.Tick() {
		t.Fatal("Tick() logged before the interval elapsed")
	}

	p.SetInterval(time.Nanosecond)
	time.Sleep(time.Millisecond)
	if !p.Tick() {
		t.Fatal("Tick() did not log after the interval elapsed")
	}
	if len(p.Stages()) != 0 {
		t.Error("stage totals were not cleared after a sample")
	}
}

func TestSlowestStages(t *testing.T) {
	p := NewProfiler()
	p.RecordStage("a", 1*time.Millisecond)
	p.RecordStage("b", 3*time.Millisecond)
	p.RecordStage("c", 2*time.Millisecond)
	p.RecordStage("d", 4*time.Millisecond)

	got := p.slowestStages(2)
	if len(got) != 2 || got[0] != "d" || got[1] != "b" {
		t.Errorf("slowestStages(2) = %v, want [d b]", got)
	}
}
