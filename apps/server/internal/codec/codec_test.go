package codec

import (
	"encoding/json"
	"testing"

	"mahjong-lite/mahjong"
	"mahjong-lite/tile"
)

func TestDecodeClientActionEnvelope(t *testing.T) {
	raw := []byte(`{"type":"action","tableId":"table_1","action":{"type":"discard","tile":"C5"}}`)
	env, err := DecodeClient(raw)
	if err != nil {
		t.Fatalf("DecodeClient err: %v", err)
	}
	if env.Type != ClientAction || env.TableID != "table_1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.Action == nil || env.Action.Type != ActionDiscard || env.Action.Tile != "C5" {
		t.Fatalf("unexpected action %+v", env.Action)
	}
}

func TestDecodeClientRejectsMissingType(t *testing.T) {
	if _, err := DecodeClient([]byte(`{"tableId":"table_1"}`)); err == nil {
		t.Fatalf("expected missing type to fail")
	}
	if _, err := DecodeClient([]byte(`not json`)); err == nil {
		t.Fatalf("expected invalid json to fail")
	}
}

func TestSnapshotViewHidesOtherHands(t *testing.T) {
	c1, err := tile.Parse("C1")
	if err != nil {
		t.Fatalf("parse tile: %v", err)
	}
	snap := mahjong.Snapshot{
		Status:      mahjong.StatusPlaying,
		Winner:      mahjong.InvalidSeat,
		CurrentSeat: 0,
		Phase:       mahjong.PhaseTypeDiscard,
		Players: []mahjong.PlayerSnapshot{
			{Seat: 0, ID: 1, Hand: []tile.Tile{c1, c1, c1}},
			{Seat: 1, ID: 2, Hand: []tile.Tile{c1, c1}},
		},
	}

	view := SnapshotView(snap, 0, map[int]string{0: "YOU", 1: "P1"})
	if len(view.Players) != 2 {
		t.Fatalf("expected 2 seats, got %d", len(view.Players))
	}
	if len(view.Players[0].Hand) != 3 || view.Players[0].HandCount != 3 {
		t.Fatalf("viewer hand should be visible: %+v", view.Players[0])
	}
	if view.Players[1].Hand != nil {
		t.Fatalf("opponent hand leaked: %+v", view.Players[1])
	}
	if view.Players[1].HandCount != 2 {
		t.Fatalf("opponent hand count wrong: %+v", view.Players[1])
	}

	// The hidden hand must survive a wire round trip as a count only.
	data, err := Encode(&ServerEnvelope{Type: ServerTableSnapshot, ServerSeq: 1, TableSnapshot: view})
	if err != nil {
		t.Fatalf("Encode err: %v", err)
	}
	var decoded ServerEnvelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if decoded.TableSnapshot.Players[1].Hand != nil {
		t.Fatalf("opponent hand leaked on the wire")
	}
}

func TestParseClaimKind(t *testing.T) {
	kind, ok := ParseClaimKind("pung")
	if !ok || kind != mahjong.ClaimPung {
		t.Fatalf("expected PUNG, got %v ok=%v", kind, ok)
	}
	if _, ok := ParseClaimKind("NONE"); ok {
		t.Fatalf("NONE must not parse as a claim")
	}
	if _, ok := ParseClaimKind("slide"); ok {
		t.Fatalf("unknown claim must not parse")
	}
}
