package timer

// MinSetting is the smallest value accepted for any configuration field.
const MinSetting = 1

// Configuration is the work/rest/round setup of a workout. Durations are whole seconds.
type Configuration struct {
	WorkDuration int `json:"workDuration" yaml:"work_duration"`
	RestDuration int `json:"restDuration" yaml:"rest_duration"`
	Rounds       int `json:"rounds" yaml:"rounds"`
}

// DefaultConfiguration returns 30s work, 10s rest, 5 rounds.
func DefaultConfiguration() Configuration {
	return Configuration{
		WorkDuration: 30,
		RestDuration: 10,
		Rounds:       5,
	}
}

// Normalize clamps every field to at least MinSetting.
func (c Configuration) Normalize() Configuration {
	c.WorkDuration = clampSetting(c.WorkDuration)
	c.RestDuration = clampSetting(c.RestDuration)
	c.Rounds = clampSetting(c.Rounds)
	return c
}

// PhaseDuration returns the configured length of phase. Finished counts as rest.
func (c Configuration) PhaseDuration(phase Phase) int {
	if phase == PhaseWork {
		return c.WorkDuration
	}
	return c.RestDuration
}

// TotalSeconds returns the length of the whole workout.
func (c Configuration) TotalSeconds() int {
	return (c.WorkDuration + c.RestDuration) * c.Rounds
}

func clampSetting(value int) int {
	if value < MinSetting {
		return MinSetting
	}
	return value
}
