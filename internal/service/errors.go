package service

import (
	"errors"

	"github.com/JonMunkholm/datacleaner/internal/csvio"
)

// Sentinel errors. Their messages carry the patterns core.MapError keys on.
var (
	ErrNoSources       = errors.New("no sources: upload at least one CSV file")
	ErrNoFields        = errors.New("no fields: define at least one concept")
	ErrProjectNotFound = errors.New("project not found")
	ErrSourceNotFound  = errors.New("source not found")
	ErrNoResult        = errors.New("no result: process the project before exporting")
	ErrNoFile          = errors.New("no file provided")

	// ErrTooManyRuns is returned when all run slots are occupied and the
	// wait timeout expires. Clients should retry after a short delay.
	ErrTooManyRuns = errors.New("too many runs in progress, please try again later")

	ErrFileTooLarge = csvio.ErrTooLarge
	ErrEmptyFile    = csvio.ErrEmptyFile
)
