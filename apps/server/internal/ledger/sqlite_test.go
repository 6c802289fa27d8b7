package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newMemoryLedger(t *testing.T) *SQLiteService {
	t.Helper()
	service, err := NewSQLiteService(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteService err: %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service
}

func sampleRecord(gameID string) GameRecord {
	return GameRecord{
		GameID:      gameID,
		TableID:     "table_1",
		Round:       3,
		Status:      "FINISHED",
		WinnerSeat:  2,
		WinKind:     "STANDARD",
		TotalPayout: 1.25,
		PlayedAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Seats: []SeatResult{
			{Seat: 0, UserID: 1, Nickname: "YOU"},
			{Seat: 1, UserID: 9000001, Nickname: "ESPERTO", Robot: true},
			{Seat: 2, UserID: 9000002, Nickname: "MEDIO", Robot: true},
			{Seat: 3, UserID: 9000003, Nickname: "BAGITO", Robot: true},
		},
		Ambitions: []AmbitionEntry{
			{Seat: 2, Kind: "BASIC", Payout: 1},
			{Seat: 2, Kind: "NO_FLOWERS", Payout: 0.25},
		},
	}
}

func TestSQLiteRecordGameRoundTrip(t *testing.T) {
	service := newMemoryLedger(t)
	ctx := context.Background()

	if err := service.RecordGame(ctx, sampleRecord("table_1_r3")); err != nil {
		t.Fatalf("RecordGame err: %v", err)
	}

	rec, err := service.GetGame(ctx, "table_1_r3")
	if err != nil {
		t.Fatalf("GetGame err: %v", err)
	}
	if rec.WinnerSeat != 2 || rec.WinKind != "STANDARD" || rec.TotalPayout != 1.25 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(rec.Seats) != 4 || !rec.Seats[1].Robot || rec.Seats[0].Nickname != "YOU" {
		t.Fatalf("unexpected seats %+v", rec.Seats)
	}
	if len(rec.Ambitions) != 2 || rec.Ambitions[1].Kind != "NO_FLOWERS" {
		t.Fatalf("unexpected ambitions %+v", rec.Ambitions)
	}
}

func TestSQLiteRecordGameIsIdempotent(t *testing.T) {
	service := newMemoryLedger(t)
	ctx := context.Background()

	rec := sampleRecord("table_1_r4")
	if err := service.RecordGame(ctx, rec); err != nil {
		t.Fatalf("first RecordGame err: %v", err)
	}
	rec.WinnerSeat = 0
	rec.Ambitions = rec.Ambitions[:1]
	if err := service.RecordGame(ctx, rec); err != nil {
		t.Fatalf("second RecordGame err: %v", err)
	}

	got, err := service.GetGame(ctx, "table_1_r4")
	if err != nil {
		t.Fatalf("GetGame err: %v", err)
	}
	if got.WinnerSeat != 0 {
		t.Fatalf("expected updated winner, got %+v", got)
	}
	if len(got.Ambitions) != 1 {
		t.Fatalf("expected ambitions replaced, got %+v", got.Ambitions)
	}
}

func TestSQLiteListRecentOrdersByPlayedAt(t *testing.T) {
	service := newMemoryLedger(t)
	ctx := context.Background()

	older := sampleRecord("table_1_r1")
	older.PlayedAt = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	newer := sampleRecord("table_1_r2")
	newer.PlayedAt = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := service.RecordGame(ctx, older); err != nil {
		t.Fatalf("RecordGame older err: %v", err)
	}
	if err := service.RecordGame(ctx, newer); err != nil {
		t.Fatalf("RecordGame newer err: %v", err)
	}

	items, err := service.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent err: %v", err)
	}
	if len(items) != 2 || items[0].GameID != "table_1_r2" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestHTTPHandlerGetGame(t *testing.T) {
	service := newMemoryLedger(t)
	if err := service.RecordGame(context.Background(), sampleRecord("table_9_r1")); err != nil {
		t.Fatalf("RecordGame err: %v", err)
	}
	handler := NewHTTPHandler(service)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/games/table_9_r1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/games/absent", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown game, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/games/recent?limit=5", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for recent list, got %d", rr.Code)
	}
}
