package conf

import "fmt"

// RunPhase ...
type RunPhase int

const (
	// DupPhase - only duplicate the template
	DupPhase RunPhase = iota
	// DupRainPhase - duplicate, then overwrite rainfall
	DupRainPhase
	// DupSubmitPhase - duplicate, then submit the job
	DupSubmitPhase
	// AllPhase - duplicate, overwrite rainfall, submit
	AllPhase
)

// FromString sets the phase from its command line name.
func (phase *RunPhase) FromString(s string) error {
	switch s {
	case "DUP":
		*phase = DupPhase
	case "DUPRAIN":
		*phase = DupRainPhase
	case "DUPSUBMIT":
		*phase = DupSubmitPhase
	case "ALL":
		*phase = AllPhase
	default:
		return fmt.Errorf("unknown phase `%s`: expecting one of DUP, DUPRAIN, DUPSUBMIT, ALL", s)
	}
	return nil
}

func (phase RunPhase) String() string {
	switch phase {
	case DupPhase:
		return "DUP"
	case DupRainPhase:
		return "DUPRAIN"
	case DupSubmitPhase:
		return "DUPSUBMIT"
	case AllPhase:
		return "ALL"
	}
	return fmt.Sprintf("RunPhase(%d)", int(phase))
}

// Rainfall is true when the phase overwrites rainfall.
func (phase RunPhase) Rainfall() bool {
	return phase == DupRainPhase || phase == AllPhase
}

// Submit is true when the phase submits the job.
func (phase RunPhase) Submit() bool {
	return phase == DupSubmitPhase || phase == AllPhase
}
