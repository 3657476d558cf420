package domain

import "errors"

var (
	// Sheet errors
	ErrSheetNotFound      = errors.New("sheet not found")
	ErrDuplicateSheetName = errors.New("sheet name already in use")
	ErrSheetLocked        = errors.New("sheet is locked")
	ErrSheetArchived      = errors.New("sheet is archived")
	ErrSheetActive        = errors.New("sheet is not archived")

	// Entry errors
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidKind   = errors.New("entry kind not valid for this book")

	// Book errors
	ErrUnknownBook = errors.New("unknown book")

	// Container errors
	ErrContainerNotFound    = errors.New("container summary not found")
	ErrInvalidContainerCode = errors.New("container code is required")
)
