package leave

import "errors"

var (
	ErrUpstreamFetch           = errors.New("Failed to fetch leave source data")
	ErrRequesterNotInDirectory = errors.New("Requester not found in directory")
	ErrAmbiguousRequester      = errors.New("Requester display name matches more than one directory user")
	ErrEmployeeNotInRoster     = errors.New("Directory email not found in roster")
	ErrEmployeeNotFound        = errors.New("Employee not found in leave report")
)
