//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"mahjong-lite/replay"
)

type initRequest struct {
	Spec replay.GameSpec `json:"spec"`
}

// handSummary lifts the tape's terminal gameEnd event into a flat block the
// page can render without walking the event stream.
type handSummary struct {
	Status    string               `json:"status"`
	Winner    int                  `json:"winner"`
	WinKind   string               `json:"winKind,omitempty"`
	Total     float64              `json:"total,omitempty"`
	Ambitions []replay.AmbitionView `json:"ambitions,omitempty"`
	Events    int                  `json:"events"`
}

type initResponse struct {
	OK      bool                   `json:"ok"`
	Tape    *replay.WireReplayTape `json:"tape,omitempty"`
	Summary *handSummary           `json:"summary,omitempty"`
	Error   *replay.ReplayError    `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__replayInit", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(initResponse{
				OK:    false,
				Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		raw := args[0].String()
		resp := handleInit(raw)
		return mustJSON(resp)
	}))

	select {}
}

func handleInit(raw string) initResponse {
	var req initRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return initResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()},
		}
	}

	tape, err := replay.GenerateReplayTape(req.Spec)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			return initResponse{OK: false, Error: replayErr}
		}
		return initResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "replay_generation_failed", Message: err.Error()},
		}
	}
	return initResponse{
		OK:      true,
		Tape:    replay.ToWireReplayTape(tape),
		Summary: summarize(tape),
	}
}

// summarize decodes the trailing gameEnd event, if the hand reached one. A
// scripted prefix that leaves the hand mid-flight yields no summary.
func summarize(tape *replay.ReplayTape) *handSummary {
	if tape == nil || len(tape.Events) == 0 {
		return nil
	}
	last := tape.Events[len(tape.Events)-1]
	if last.Type != "gameEnd" {
		return &handSummary{Status: "PLAYING", Winner: -1, Events: len(tape.Events)}
	}
	var end replay.GameEndEvent
	if err := json.Unmarshal(last.Payload, &end); err != nil {
		return nil
	}
	return &handSummary{
		Status:    end.Status,
		Winner:    end.Winner,
		WinKind:   end.WinKind,
		Total:     end.Total,
		Ambitions: end.Ambitions,
		Events:    len(tape.Events),
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		fallback := initResponse{
			OK:    false,
			Error: &replay.ReplayError{StepIndex: -1, Reason: "marshal_failed", Message: err.Error()},
		}
		b2, _ := json.Marshal(fallback)
		return string(b2)
	}
	return string(b)
}
