package s3blob

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/opavlenko/skinarb/internal/domain"
)

type captureWriter struct {
	path        string
	contentType string
	body        []byte
}

func (c *captureWriter) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	c.path = path
	c.contentType = contentType
	var err error
	c.body, err = io.ReadAll(data)
	return err
}

func TestArchiveReportKeyAndPayload(t *testing.T) {
	w := &captureWriter{}
	report := domain.ScanReport{
		ID:          "0c2f7f2e-6d1a-4d8e-9f5b-1a2b3c4d5e6f",
		Source:      domain.VenueSteam,
		Destination: domain.VenueDMarket,
		Game:        domain.GameCS2,
		Currency:    domain.CurrencyUSD,
		Requested:   50,
		Listed:      42,
		FinishedAt:  time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC),
	}

	key, err := NewArchiver(w).ArchiveReport(context.Background(), report)
	if err != nil {
		t.Fatalf("ArchiveReport: %v", err)
	}
	want := "reports/steam-dmarket/2026/08/29/0c2f7f2e-6d1a-4d8e-9f5b-1a2b3c4d5e6f.json"
	if key != want {
		t.Errorf("key = %q, want %q", key, want)
	}
	if w.path != key {
		t.Errorf("writer path = %q, want %q", w.path, key)
	}
	if w.contentType != "application/json" {
		t.Errorf("content type = %q", w.contentType)
	}

	var decoded domain.ScanReport
	if err := json.Unmarshal(w.body, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded.ID != report.ID || decoded.Listed != 42 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestArchiveReportRejectsEmptyID(t *testing.T) {
	if _, err := NewArchiver(&captureWriter{}).ArchiveReport(context.Background(), domain.ScanReport{}); err == nil {
		t.Fatal("expected error for empty report id")
	}
}
