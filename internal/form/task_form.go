// Package form drives the create/edit task form and the change-password form. Views feed
// user input into the fields and advance the state machine; no partial edit ever reaches
// the remote service.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskpad/internal/api"
	"taskpad/internal/model"
)

type State int

const (
	Idle State = iota
	Loading
	Editable
	Submitting
	Success
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Editable:
		return "editable"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the form is finished.
func (s State) Terminal() bool { return s == Success || s == Cancelled }

type Mode int

const (
	Create Mode = iota
	Edit
)

var ErrInvalidTransition = errors.New("invalid form transition")

// Backend persists the form. *tasks.Collection satisfies it.
type Backend interface {
	Get(ctx context.Context, id string) (model.Task, error)
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error)
}

type Fields struct {
	Title       string
	Description string
	DueDate     string
	Category    model.Category
	Priority    model.Priority
	Status      model.Status
}

func DefaultFields() Fields {
	return Fields{
		Category: model.CategoryWork,
		Priority: model.PriorityMedium,
		Status:   model.StatusPending,
	}
}

func FieldsFrom(t model.Task) Fields {
	f := Fields{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     model.DueDay(t.DueDate),
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status,
	}
	d := DefaultFields()
	if f.Category == "" {
		f.Category = d.Category
	}
	if f.Priority == "" {
		f.Priority = d.Priority
	}
	if f.Status == "" {
		f.Status = d.Status
	}
	return f
}

type TaskForm struct {
	Mode   Mode
	TaskID string
	State  State
	Fields Fields

	// Err is the inline error shown while Editable; empty when none.
	Err string
	// Result is the server's copy of the task after Success.
	Result model.Task
}

// NewCreate starts a create form, editable with default fields.
func NewCreate() *TaskForm {
	return &TaskForm{Mode: Create, State: Editable, Fields: DefaultFields()}
}

// NewEdit starts an edit form waiting for the task to be fetched.
func NewEdit(id string) *TaskForm {
	return &TaskForm{Mode: Edit, TaskID: strings.TrimSpace(id), State: Loading}
}

// Loaded completes the fetch of an edit form. A failed fetch leaves the form editable
// with the error shown.
func (f *TaskForm) Loaded(t model.Task, err error) error {
	if f.State != Loading {
		return fmt.Errorf("%w: loaded in %s", ErrInvalidTransition, f.State)
	}
	f.State = Editable
	if err != nil {
		f.Err = errorMessage(err, "Failed to get task")
		return nil
	}
	f.Err = ""
	f.Fields = FieldsFrom(t)
	return nil
}

// Load fetches the task of an edit form through b.
func (f *TaskForm) Load(ctx context.Context, b Backend) error {
	if f.State != Loading {
		return fmt.Errorf("%w: load in %s", ErrInvalidTransition, f.State)
	}
	t, err := b.Get(ctx, f.TaskID)
	return f.Loaded(t, err)
}

// Validate applies the required-field gate.
func (f *TaskForm) Validate() error {
	if strings.TrimSpace(f.Fields.Title) == "" {
		return model.Invalid("Title is required")
	}
	if strings.TrimSpace(f.Fields.DueDate) == "" {
		return model.Invalid("Due date is required")
	}
	return nil
}

// Input is the body sent on submit: every field for create, every field including
// status for edit.
func (f *TaskForm) Input() model.TaskInput {
	title := strings.TrimSpace(f.Fields.Title)
	desc := strings.TrimSpace(f.Fields.Description)
	due := strings.TrimSpace(f.Fields.DueDate)
	cat := f.Fields.Category
	pri := f.Fields.Priority
	in := model.TaskInput{
		Title:       &title,
		Description: &desc,
		DueDate:     &due,
		Category:    &cat,
		Priority:    &pri,
	}
	if f.Mode == Edit {
		st := f.Fields.Status
		in.Status = &st
	}
	return in
}

// Begin moves Editable to Submitting when the fields pass validation. On a validation
// failure the form stays Editable with the inline error and the error is returned.
func (f *TaskForm) Begin() (model.TaskInput, error) {
	if f.State != Editable {
		return model.TaskInput{}, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, f.State)
	}
	if f.Mode == Edit && f.TaskID == "" {
		f.Err = "Failed to update task"
		return model.TaskInput{}, model.Invalid(f.Err)
	}
	if err := f.Validate(); err != nil {
		f.Err = err.Error()
		return model.TaskInput{}, err
	}
	f.Err = ""
	f.State = Submitting
	return f.Input(), nil
}

// Finish records the remote outcome of a submit.
func (f *TaskForm) Finish(t model.Task, err error) error {
	if f.State != Submitting {
		return fmt.Errorf("%w: finish in %s", ErrInvalidTransition, f.State)
	}
	if err != nil {
		f.State = Editable
		fallback := "Failed to create task"
		if f.Mode == Edit {
			fallback = "Failed to update task"
		}
		f.Err = errorMessage(err, fallback)
		return nil
	}
	f.State = Success
	f.Result = t
	return nil
}

// Submit validates, sends, and records the outcome. The returned error is the
// validation or remote failure, also kept in f.Err.
func (f *TaskForm) Submit(ctx context.Context, b Backend) error {
	in, err := f.Begin()
	if err != nil {
		return err
	}
	var t model.Task
	if f.Mode == Edit {
		t, err = b.Update(ctx, f.TaskID, in)
	} else {
		t, err = b.Create(ctx, in)
	}
	if ferr := f.Finish(t, err); ferr != nil {
		return ferr
	}
	return err
}

// Cancel abandons the form from any non-terminal state.
func (f *TaskForm) Cancel() {
	if f.State.Terminal() {
		return
	}
	f.State = Cancelled
}

func (f *TaskForm) CycleCategory(delta int) {
	f.Fields.Category = cycle(model.Categories, f.Fields.Category, delta)
}

func (f *TaskForm) CyclePriority(delta int) {
	f.Fields.Priority = cycle(model.Priorities, f.Fields.Priority, delta)
}

func (f *TaskForm) ToggleStatus() {
	if f.Fields.Status == model.StatusCompleted {
		f.Fields.Status = model.StatusPending
	} else {
		f.Fields.Status = model.StatusCompleted
	}
}

func cycle[T comparable](opts []T, cur T, delta int) T {
	if len(opts) == 0 {
		return cur
	}
	idx := 0
	for i, o := range opts {
		if o == cur {
			idx = i
			break
		}
	}
	n := len(opts)
	return opts[((idx+delta)%n+n)%n]
}

func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		return err.Error()
	}
	return fallback
}
