package panel

import "errors"

var (
	errRequiredFields = errors.New("required fields missing")
	errNoEditSession  = errors.New("no edit session active")
	errNoDeleteTarget = errors.New("no delete pending confirmation")
)
