package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nifty-butterfly/internal/models"
)

func writeChainFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing chain file: %v", err)
	}
	return path
}

func TestCSVSourceReadsContracts(t *testing.T) {
	path := writeChainFile(t, `strike_price,symbol,side,ltp,bid,ask
24000,NIFTY24SEP24000CE,CALL,120.5,119,122
24000,NIFTY24SEP24000PE,PUT,80.25,79,81.5
24050,NIFTY24SEP24050CE,CALL,95,94,96
`)

	src := NewCSVSource(path, "NIFTY", 24070)
	snap, err := src.GetSnapshot(context.Background())
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	if len(snap.Contracts) != 3 {
		t.Fatalf("got %d contracts, want 3", len(snap.Contracts))
	}
	if snap.SpotPrice != 24070 {
		t.Errorf("SpotPrice = %v, want 24070", snap.SpotPrice)
	}
	if snap.Symbol != "NIFTY" {
		t.Errorf("Symbol = %q, want NIFTY", snap.Symbol)
	}

	first := snap.Contracts[0]
	if first.StrikePrice != 24000 || first.Side != models.Call {
		t.Errorf("first contract = %+v, want 24000 CALL", first)
	}
	if first.Ask == nil || *first.Ask != 122 {
		t.Errorf("first contract ask = %v, want 122", first.Ask)
	}
}

func TestCSVSourceSpotFromSentinelRow(t *testing.T) {
	path := writeChainFile(t, `strike_price,symbol,side,ltp,bid,ask
-1,NIFTY,,24070.5,,
24000,NIFTY24SEP24000CE,CALL,120.5,119,122
`)

	src := NewCSVSource(path, "NIFTY", 0)
	snap, err := src.GetSnapshot(context.Background())
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	if snap.SpotPrice != 24070.5 {
		t.Errorf("SpotPrice = %v, want 24070.5 from sentinel row", snap.SpotPrice)
	}
}

func TestCSVSourceMissingColumnsOptional(t *testing.T) {
	path := writeChainFile(t, `strike_price,side,ask
24000,CALL,122
`)

	src := NewCSVSource(path, "NIFTY", 24000)
	snap, err := src.GetSnapshot(context.Background())
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	c := snap.Contracts[0]
	if c.Bid != nil || c.LTP != nil {
		t.Errorf("absent columns should stay nil, got bid=%v ltp=%v", c.Bid, c.LTP)
	}
	if c.Ask == nil || *c.Ask != 122 {
		t.Errorf("ask = %v, want 122", c.Ask)
	}
}

func TestCSVSourceFileMissing(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"), "NIFTY", 0)
	if _, err := src.GetSnapshot(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCSVSourceEmptyFile(t *testing.T) {
	path := writeChainFile(t, "strike_price,side,ask\n")
	src := NewCSVSource(path, "NIFTY", 0)
	if _, err := src.GetSnapshot(context.Background()); err == nil {
		t.Fatal("expected error for file with no contracts")
	}
}
