package util

import "errors"

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrModuleNotFound         = errors.New("training module not found")
	ErrAssignmentNotFound     = errors.New("training assignment not found")
	ErrInvalidQRCode          = errors.New("invalid QR code or training module not available")
	ErrTrainingLocked         = errors.New("training not unlocked, scan the module QR code first")
	ErrTrainingNotCompletable = errors.New("training cannot be completed in its current status")
	ErrAlreadyAssigned        = errors.New("training module already assigned to this employee")
	ErrInvalidModule          = errors.New("training module title is required and duration must not be negative")
	ErrInvalidMinutes         = errors.New("minutes must be greater than zero and within range")
	ErrPermissionDenied       = errors.New("permission denied")
)
