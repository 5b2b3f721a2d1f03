package timer

import "testing"

func TestPhaseProgress(t *testing.T) {
	cfg := Configuration{WorkDuration: 20, RestDuration: 10, Rounds: 4}
	for _, tc := range []struct {
		session Session
		want    float64
	}{
		{Session{Phase: PhaseWork, TimeRemaining: 20}, 0},
		{Session{Phase: PhaseWork, TimeRemaining: 5}, 0.75},
		{Session{Phase: PhaseRest, TimeRemaining: 5}, 0.5},
		{Session{Phase: PhaseWork, TimeRemaining: 40}, 0},
		{Session{Phase: PhaseFinished, TimeRemaining: 0}, 1},
	} {
		if got := PhaseProgress(tc.session, cfg); got != tc.want {
			t.Errorf("PhaseProgress(%+v) = %v, want %v", tc.session, got, tc.want)
		}
	}
}

func TestOverallProgress(t *testing.T) {
	cfg := Configuration{WorkDuration: 20, RestDuration: 10, Rounds: 4}
	for _, tc := range []struct {
		session Session
		want    float64
	}{
		{Session{Phase: PhaseWork, CurrentRound: 1, TimeRemaining: 20}, 0},
		{Session{Phase: PhaseWork, CurrentRound: 1, TimeRemaining: 10}, 0.125},
		{Session{Phase: PhaseRest, CurrentRound: 1, TimeRemaining: 10}, 0.25},
		{Session{Phase: PhaseRest, CurrentRound: 2, TimeRemaining: 1}, 0.5},
		{Session{Phase: PhaseFinished, CurrentRound: 4}, 1},
	} {
		if got := OverallProgress(tc.session, cfg); got != tc.want {
			t.Errorf("OverallProgress(%+v) = %v, want %v", tc.session, got, tc.want)
		}
	}
}
