package filter

import (
	"testing"

	"taskpad/internal/model"
)

func sample() []*model.Task {
	return []*model.Task{
		{ID: "1", Title: "Write project plan", Category: model.CategoryWork, Priority: model.PriorityHigh, Status: model.StatusPending},
		{ID: "2", Title: "Morning run", Description: "5k around the park", Category: model.CategoryHealth, Priority: model.PriorityMedium, Status: model.StatusCompleted},
		{ID: "3", Title: "Dentist", Description: "Bring PROJ insurance card", Category: model.CategoryHealth, Priority: model.PriorityLow, Status: model.StatusPending},
		{ID: "4", Title: "Groceries", Category: model.CategoryPersonal, Priority: model.PriorityLow, Status: model.StatusPending},
	}
}

func ids(ts []*model.Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisible_AllFiltersIsIdentity(t *testing.T) {
	in := sample()
	out := Visible(in, model.AllFilters())
	if len(out) != len(in) {
		t.Fatalf("expected %d, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("expected same pointer at %d", i)
		}
	}
}

func TestVisible_HealthCategory(t *testing.T) {
	f := model.AllFilters()
	f.Category = string(model.CategoryHealth)
	got := ids(Visible(sample(), f))
	if !equal(got, []string{"2", "3"}) {
		t.Fatalf("expected [2 3], got %v", got)
	}
}

func TestVisible_SearchMatchesTitleOrDescriptionCaseInsensitive(t *testing.T) {
	f := model.AllFilters()
	f.Search = "proj"
	got := ids(Visible(sample(), f))
	if !equal(got, []string{"1", "3"}) {
		t.Fatalf("expected [1 3], got %v", got)
	}
}

func TestVisible_SearchKeepsWhitespace(t *testing.T) {
	in := []*model.Task{
		{ID: "1", Title: "Project Plan"},
		{ID: "2", Title: "Groceries"},
		{ID: "3", Title: "Planning"},
	}
	cases := []struct {
		search string
		want   []string
	}{
		{" ", []string{"1"}},
		{" plan", []string{"1"}},
		{"plan", []string{"1", "3"}},
		{"", []string{"1", "2", "3"}},
	}
	for _, tc := range cases {
		f := model.AllFilters()
		f.Search = tc.search
		if got := ids(Visible(in, f)); !equal(got, tc.want) {
			t.Fatalf("search %q: expected %v, got %v", tc.search, tc.want, got)
		}
	}
}

func TestVisible_Conjunction(t *testing.T) {
	cases := []struct {
		name string
		f    model.FilterSet
		want []string
	}{
		{"health pending", model.FilterSet{Category: "Health", Status: "pending", Priority: "all"}, []string{"3"}},
		{"low priority", model.FilterSet{Category: "all", Status: "all", Priority: "low"}, []string{"3", "4"}},
		{"completed work", model.FilterSet{Category: "Work", Status: "completed", Priority: "all"}, []string{}},
		{"search plus category", model.FilterSet{Category: "Health", Status: "all", Priority: "all", Search: "PARK"}, []string{"2"}},
		{"zero value means all", model.FilterSet{}, []string{"1", "2", "3", "4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Visible(sample(), tc.f))
			if !equal(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestVisible_SubsetPreservesOrderAndInput(t *testing.T) {
	in := sample()
	snapshot := append([]*model.Task(nil), in...)
	out := Visible(in, model.FilterSet{Category: "all", Status: "pending", Priority: "all"})

	pos := map[*model.Task]int{}
	for i, task := range in {
		pos[task] = i
	}
	last := -1
	for _, task := range out {
		i, ok := pos[task]
		if !ok {
			t.Fatalf("visible task %s not in input", task.ID)
		}
		if i <= last {
			t.Fatalf("order not preserved at task %s", task.ID)
		}
		last = i
	}
	for i := range in {
		if in[i] != snapshot[i] {
			t.Fatalf("input modified at %d", i)
		}
	}
}

func TestActive(t *testing.T) {
	if Active(model.AllFilters()) || Active(model.FilterSet{}) {
		t.Fatalf("expected inactive")
	}
	if !Active(model.FilterSet{Category: "all", Status: "all", Priority: "all", Search: "x"}) {
		t.Fatalf("expected search to be active")
	}
	if !Active(model.FilterSet{Category: "all", Status: "all", Priority: "all", Search: " "}) {
		t.Fatalf("expected whitespace search to be active")
	}
	if !Active(model.FilterSet{Category: "Work"}) {
		t.Fatalf("expected category to be active")
	}
}

func TestParse(t *testing.T) {
	if v, err := ParseCategory("health"); err != nil || v != "Health" {
		t.Fatalf("unexpected: %q %v", v, err)
	}
	if v, err := ParseCategory(""); err != nil || v != "all" {
		t.Fatalf("unexpected: %q %v", v, err)
	}
	if _, err := ParseCategory("Errands"); err == nil {
		t.Fatalf("expected error")
	}
	if v, err := ParseStatus("Completed"); err != nil || v != "completed" {
		t.Fatalf("unexpected: %q %v", v, err)
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatalf("expected error")
	}
	if v, err := ParsePriority("HIGH"); err != nil || v != "high" {
		t.Fatalf("unexpected: %q %v", v, err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNext_Cycles(t *testing.T) {
	seq := []string{}
	cur := model.FilterAll
	for i := 0; i < 4; i++ {
		cur = Next(cur, model.Priorities)
		seq = append(seq, cur)
	}
	if !equal(seq, []string{"low", "medium", "high", "all"}) {
		t.Fatalf("unexpected cycle: %v", seq)
	}
}
