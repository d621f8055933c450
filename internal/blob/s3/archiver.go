package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/opavlenko/skinarb/internal/domain"
)

// Archiver uploads completed scan reports to object storage as JSON, keyed
// by scan date and ID so reports are listable per day:
//
//	reports/{source}-{destination}/2026/08/29/{id}.json
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates a new Archiver backed by the given writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveReport serializes one scan report and uploads it. It returns the
// object key the report was stored under.
func (a *Archiver) ArchiveReport(ctx context.Context, report domain.ScanReport) (string, error) {
	if report.ID == "" {
		return "", fmt.Errorf("s3blob: archive report: empty report id")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal report %s: %w", report.ID, err)
	}

	key := reportKey(report)
	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: archive report %s: %w", report.ID, err)
	}
	return key, nil
}

func reportKey(report domain.ScanReport) string {
	return fmt.Sprintf("reports/%s-%s/%s/%s.json",
		report.Source, report.Destination,
		report.FinishedAt.UTC().Format("2006/01/02"),
		report.ID,
	)
}
