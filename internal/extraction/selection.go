package extraction

import "fmt"

// ToggleSelection returns a copy of result with the Selected flag of schedule id
// flipped. The bool is false when no schedule has that id.
func ToggleSelection(result ExtractionResult, id string) (ExtractionResult, bool) {
	out := result
	out.Schedules = append([]ExtractedSchedule(nil), result.Schedules...)
	for i := range out.Schedules {
		if out.Schedules[i].ID == id {
			out.Schedules[i].Selected = !out.Schedules[i].Selected
			return out, true
		}
	}
	return result, false
}

// SelectPositions returns a copy of result where exactly the schedules at the
// given 1-based positions are selected.
func SelectPositions(result ExtractionResult, positions []int) (ExtractionResult, error) {
	out := result
	out.Schedules = append([]ExtractedSchedule(nil), result.Schedules...)
	for i := range out.Schedules {
		out.Schedules[i].Selected = false
	}
	for _, p := range positions {
		if p < 1 || p > len(out.Schedules) {
			return result, fmt.Errorf("%w: position %d out of range 1..%d", ErrInvalidSchedule, p, len(out.Schedules))
		}
		out.Schedules[p-1].Selected = true
	}
	return out, nil
}

// SelectedSchedules returns the schedules marked selected, in order.
func SelectedSchedules(schedules []ExtractedSchedule) []ExtractedSchedule {
	var out []ExtractedSchedule
	for _, s := range schedules {
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}
