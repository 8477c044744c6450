package cli

import (
	"fmt"

	"taskpad/internal/api"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// remoteErr maps a not-found api failure to notFoundError; everything else is returned
// unchanged.
func remoteErr(err error, kind, id string) error {
	if api.IsKind(err, api.KindNotFound) && id != "" {
		return errNotFound(kind, id)
	}
	return err
}
