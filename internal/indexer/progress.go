package indexer

import (
	"fmt"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// ProgressEvent reports the state of one language batch during a run.
type ProgressEvent struct {
	Language codegraph.Language
	Status   ProgressStatus
	Files    int
	Message  string
}

// ProgressStatus is the state of a language batch.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s: %d files (pending)", event.Language, event.Files)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s: %d files...", event.Language, event.Files)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete: %s", event.Language, event.Message)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Language, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Language)
	}
}
