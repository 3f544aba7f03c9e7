package store

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered in organization")
	ErrMachineNotFound      = errors.New("machine not found")
	ErrTemplateNotFound     = errors.New("checklist template not found")
	ErrSubmissionNotFound   = errors.New("checklist submission not found")
	ErrSubmissionNotPending = errors.New("checklist submission already reviewed")
	ErrJobNotFound          = errors.New("job not found")
	ErrAssignmentNotFound   = errors.New("job assignment not found")
	ErrConflict             = errors.New("unique constraint violated")
	ErrConstraint           = errors.New("constraint violated")
	ErrStorage              = errors.New("database operation failed")
)
