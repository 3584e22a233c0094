package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// ConsoleSink renders run events to a terminal. Text mode prints one line per
// stage and terminal event with the state colorized; ndjson mode emits one
// JSON object per line for machine consumers.
type ConsoleSink struct {
	writer io.Writer
	format string // "text", "ndjson"
	mu     sync.Mutex
}

func NewConsoleSink(w io.Writer, format string) (*ConsoleSink, error) {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported console format: %s", format)
	}
	return &ConsoleSink{writer: w, format: format}, nil
}

func (s *ConsoleSink) Write(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "ndjson" {
		if err := json.NewEncoder(s.writer).Encode(e); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}

	switch e.Type {
	case "run.started":
		if _, err := fmt.Fprintf(s.writer, "%s %s run %s\n", stateLabel("STARTED"), e.Repo, e.RunID); err != nil {
			return err
		}
	case "stage.finished":
		if _, err := fmt.Fprintf(s.writer, "  [%s] %s\n", stateLabel(e.State), e.Stage); err != nil {
			return err
		}
	case "run.finished":
		if _, err := fmt.Fprintf(s.writer, "%s %s", stateLabel(e.State), e.Repo); err != nil {
			return err
		}
		if e.Message != "" {
			if _, err := fmt.Fprintf(s.writer, " - %s", e.Message); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(s.writer); err != nil {
			return err
		}
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) Close() error {
	return nil
}

func stateLabel(state string) string {
	switch state {
	case "Completed", "ok":
		return color.GreenString(state)
	case "Failed":
		return color.RedString(state)
	default:
		return color.CyanString(state)
	}
}
