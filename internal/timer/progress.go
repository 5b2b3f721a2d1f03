package timer

// PhaseProgress is the completed fraction of the current phase, in [0, 1].
func PhaseProgress(s Session, cfg Configuration) float64 {
	duration := cfg.PhaseDuration(s.Phase)
	if duration <= 0 {
		return 1
	}
	return clamp01(1 - float64(s.TimeRemaining)/float64(duration))
}

// OverallProgress is the completed fraction of the whole workout, in [0, 1].
// A rest phase counts its round as done.
func OverallProgress(s Session, cfg Configuration) float64 {
	if cfg.Rounds <= 0 {
		return 0
	}
	if s.Phase == PhaseFinished {
		return 1
	}
	partial := PhaseProgress(s, cfg)
	if s.Phase == PhaseRest {
		partial = 1
	}
	return clamp01((float64(s.CurrentRound-1) + partial) / float64(cfg.Rounds))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
