package task

import "errors"

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectNameExists   = errors.New("project name already exists")
	ErrMalformedAssignment = errors.New("malformed task assignment")
)
