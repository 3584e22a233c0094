package output

// Event is a run lifecycle record. Sinks receive one event per transition:
//
//   - run.started
//   - stage.finished (one per pipeline stage, with the resulting state)
//   - run.finished (terminal state and outcome message)
//
// NDJSON mode emits each event as one JSON object per line; text mode renders
// a human-facing summary line for stage and terminal events.
type Event struct {
	Type    string `json:"type"`
	RunID   string `json:"run_id,omitempty"`
	Repo    string `json:"repo,omitempty"`
	Stage   string `json:"stage,omitempty"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
}

func RunStarted(runID, repo string) Event {
	return Event{Type: "run.started", RunID: runID, Repo: repo}
}

func StageFinished(runID, repo, stage, state string) Event {
	return Event{Type: "stage.finished", RunID: runID, Repo: repo, Stage: stage, State: state}
}

func RunFinished(runID, repo, state, message string) Event {
	return Event{Type: "run.finished", RunID: runID, Repo: repo, State: state, Message: message}
}
