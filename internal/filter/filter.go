// Package filter computes the visible subset of a task list.
package filter

import (
	"fmt"
	"strings"

	"taskpad/internal/model"
)

// Visible returns the tasks matching every active filter, in input order. Search is a
// case-insensitive substring match taken as typed; only the empty string disables it. The returned
// slice shares task pointers with the input; the input is never modified.
func Visible(tasks []*model.Task, f model.FilterSet) []*model.Task {
	q := strings.ToLower(f.Search)
	out := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if !matchField(f.Category, string(t.Category)) ||
			!matchField(f.Status, string(t.Status)) ||
			!matchField(f.Priority, string(t.Priority)) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isAll(v string) bool { return v == "" || v == model.FilterAll }

func matchField(want, got string) bool {
	return isAll(want) || want == got
}

// Active reports whether f narrows the list at all.
func Active(f model.FilterSet) bool {
	return !isAll(f.Category) || !isAll(f.Status) || !isAll(f.Priority) || f.Search != ""
}

// ParseCategory accepts "all" or a category name, case-insensitively.
func ParseCategory(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, model.FilterAll) {
		return model.FilterAll, nil
	}
	for _, c := range model.Categories {
		if strings.EqualFold(s, string(c)) {
			return string(c), nil
		}
	}
	return "", fmt.Errorf("invalid category %q (expected all, %s)", s, joinValues(model.Categories))
}

func ParseStatus(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, model.FilterAll) {
		return model.FilterAll, nil
	}
	for _, st := range model.Statuses {
		if strings.EqualFold(s, string(st)) {
			return string(st), nil
		}
	}
	return "", fmt.Errorf("invalid status %q (expected all, %s)", s, joinValues(model.Statuses))
}

func ParsePriority(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, model.FilterAll) {
		return model.FilterAll, nil
	}
	for _, p := range model.Priorities {
		if strings.EqualFold(s, string(p)) {
			return string(p), nil
		}
	}
	return "", fmt.Errorf("invalid priority %q (expected all, %s)", s, joinValues(model.Priorities))
}

// Next cycles a filter value through "all" followed by options, wrapping around.
func Next[T ~string](cur string, options []T) string {
	if cur == "" || cur == model.FilterAll {
		if len(options) == 0 {
			return model.FilterAll
		}
		return string(options[0])
	}
	for i, o := range options {
		if string(o) == cur {
			if i+1 < len(options) {
				return string(options[i+1])
			}
			return model.FilterAll
		}
	}
	return model.FilterAll
}

func joinValues[T ~string](vs []T) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ", ")
}
