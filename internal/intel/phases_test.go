package intel

import "testing"

func TestPhaseIndexCoversAllStages(t *testing.T) {
	for i, name := range StageOrder {
		idx, ok := PhaseIndex(name)
		if !ok {
			t.Errorf("stage %q not recognized", name)
			continue
		}
		if idx != i {
			t.Errorf("stage %q: expected phase %d, got %d", name, i, idx)
		}
	}
}

func TestPhaseIndexUnknownStage(t *testing.T) {
	idx, ok := PhaseIndex("quantum_uplink")
	if ok {
		t.Error("expected unknown stage to be unrecognized")
	}
	if idx != -1 {
		t.Errorf("expected -1 for unknown stage, got %d", idx)
	}
}

func TestPhaseName(t *testing.T) {
	if got := PhaseName(0); got != "Fetch Product" {
		t.Errorf("expected 'Fetch Product', got %q", got)
	}
	if got := PhaseName(TotalPhases - 1); got != "Scripts" {
		t.Errorf("expected 'Scripts', got %q", got)
	}
	if got := PhaseName(TotalPhases); got != "" {
		t.Errorf("expected empty name out of range, got %q", got)
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusRunning} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
