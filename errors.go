package secomposer

import "errors"

var (
	// ErrInvalidFormat reports an import document that is not valid preset JSON.
	ErrInvalidFormat = errors.New("invalid preset format")
	// ErrExportFailed reports an offline render that could not be produced.
	ErrExportFailed   = errors.New("export failed")
	ErrPresetNotFound = errors.New("preset not found")
	ErrEmptyName      = errors.New("preset name is empty")
)
