package constants

import "errors"

// Static errors for err113 compliance.

// Configuration errors.
var (
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrInvalidBoolValue = errors.New("invalid boolean value")
	ErrUnknownOutput    = errors.New("unknown output format")
)

// Input errors.
var (
	ErrInvalidHeader = errors.New("invalid header, expected Name: value")
	ErrInvalidParam  = errors.New("invalid parameter, expected key=value")
	ErrParamConflict = errors.New("parameter is both a value and a nested group")
	ErrDataConflict  = errors.New("--data and --data-file are mutually exclusive")
	ErrNoData        = errors.New("a request body is required, use --data or --data-file")
)

// Output errors.
var (
	ErrEmptyFilterResult = errors.New("jq expression produced no output")
)
