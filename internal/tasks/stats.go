package tasks

import "taskpad/internal/model"

// ComputeStats derives the dashboard counters in one pass. A status other than pending
// or completed counts toward Total only.
func ComputeStats(tasks []*model.Task) model.Stats {
	st := model.Stats{Categories: map[model.Category]int{}}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		st.Total++
		if t.Status == model.StatusCompleted {
			st.Completed++
		} else if t.Status == model.StatusPending {
			st.Pending++
		}
		st.Categories[t.Category]++
	}
	return st
}
