package object

import "errors"

var (
	ErrNotCallable    = errors.New("object: value is not callable")
	ErrNotConstructor = errors.New("object: value is not a constructor")
)
