package service

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound      = errors.New("node not found in chart")
	ErrNotAdHoc          = errors.New("only ad-hoc nodes can be removed")
	ErrInvalidEdit       = errors.New("invalid edit")
	ErrPredecessorAbsent = errors.New("predecessor task does not exist")
)

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
