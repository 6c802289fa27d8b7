package replay

// WireReplayTape is the camelCase shape served to web clients.
type WireReplayTape struct {
	TapeVersion int               `json:"tapeVersion"`
	TableID     string            `json:"tableId"`
	HeroSeat    int               `json:"heroSeat"`
	Events      []WireReplayEvent `json:"events"`
}

type WireReplayEvent struct {
	Type       string `json:"type"`
	Seq        uint64 `json:"seq"`
	PayloadB64 string `json:"payloadB64"`
}

func ToWireReplayTape(tape *ReplayTape) *WireReplayTape {
	if tape == nil {
		return nil
	}
	out := &WireReplayTape{
		TapeVersion: tape.TapeVersion,
		TableID:     tape.TableID,
		HeroSeat:    tape.HeroSeat,
		Events:      make([]WireReplayEvent, 0, len(tape.Events)),
	}
	for _, e := range tape.Events {
		out.Events = append(out.Events, WireReplayEvent{
			Type:       e.Type,
			Seq:        e.Seq,
			PayloadB64: e.PayloadB64,
		})
	}
	return out
}
