package services

import "errors"

// Workspace service errors
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrInvalidInput      = errors.New("invalid input")
)
