package form

import (
	"context"
	"fmt"

	"taskpad/internal/api"
	"taskpad/internal/model"
)

// PasswordRemote is implemented by *api.Client.
type PasswordRemote interface {
	ChangePassword(ctx context.Context, current, next string) api.Result[api.Ack]
}

type PasswordForm struct {
	Current string
	New     string
	Confirm string

	State State
	Err   string
	// Message is the confirmation shown after Success.
	Message string
}

func NewPassword() *PasswordForm {
	return &PasswordForm{State: Editable}
}

func (p *PasswordForm) Validate() error {
	if p.Current == "" || p.New == "" || p.Confirm == "" {
		return model.Invalid("All password fields are required")
	}
	if p.New != p.Confirm {
		return model.Invalid("New passwords do not match")
	}
	return nil
}

// Submit validates and sends the change. On success the fields are cleared.
func (p *PasswordForm) Submit(ctx context.Context, r PasswordRemote) error {
	if p.State != Editable {
		return fmt.Errorf("%w: submit in %s", ErrInvalidTransition, p.State)
	}
	if err := p.Validate(); err != nil {
		p.Err = err.Error()
		return err
	}
	p.Err = ""
	p.State = Submitting
	res := r.ChangePassword(ctx, p.Current, p.New)
	if !res.OK() {
		p.State = Editable
		p.Err = errorMessage(res.Err(), "Failed to update password")
		return res.Err()
	}
	p.State = Success
	p.Message = res.Data().Message
	p.Current, p.New, p.Confirm = "", "", ""
	return nil
}
