// Package processor implements the two spreadsheet operations: column
// standardization and partitioning rows into one file per key value.
// Operations are synchronous; each call loads its own table from disk and
// returns an *Error describing any failure.
package processor

import (
	"log/slog"

	"github.com/nconklindev/sheetwise/internal/sheet"
)

type Processor struct {
	opts sheet.Options
	log  *slog.Logger
}

func New(opts sheet.Options, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{opts: opts, log: logger}
}

// reportProgress never blocks; updates are dropped when nobody is reading.
func reportProgress(progressChan chan<- float64, p float64) {
	if progressChan == nil {
		return
	}
	select {
	case progressChan <- p:
	default:
	}
}
