package database

import (
	"context"
	"testing"
	"time"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// newTestDB opens a ContentDB in a temporary directory.
func newTestDB(t *testing.T) *ContentDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return cdb
}

// newTestRecord builds a section record for the given path.
func newTestRecord(localPath, hash string) *model.ContentRecord {
	return &model.ContentRecord{
		CodeType:      model.CodeTypeWAC,
		Kind:          model.KindSection,
		TitleNumber:   "1",
		ChapterNumber: "1-04",
		SectionNumber: "1-04-010",
		URL:           "https://app.leg.wa.gov/wac/default.aspx?cite=1-04-010",
		LocalPath:     localPath,
		ContentHash:   hash,
		Size:          512,
		FetchedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpenRequiresExistingDatabase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Open(dir, Options{CreateIfNotExists: false})
	if err == nil {
		t.Fatal("expected error for missing database")
	}

	cdb, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := cdb.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		t.Fatalf("failed to reopen existing database: %v", err)
	}
	if err := reopened.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveAndLatestRecord(t *testing.T) {
	t.Parallel()

	cdb := newTestDB(t)
	ctx := context.Background()

	record := newTestRecord("wac/1/1-04/section_1-04-010.html", "abc123")
	id, err := cdb.SaveContentRecord(ctx, record)
	if err != nil {
		t.Fatalf("failed to save record: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero row ID")
	}

	got, err := cdb.LatestRecord(ctx, model.CodeTypeWAC, record.LocalPath)
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.ID != id {
		t.Errorf("got ID %d, expected %d", got.ID, id)
	}
	if got.Kind != model.KindSection {
		t.Errorf("got kind %q", got.Kind)
	}
	if got.SectionNumber != "1-04-010" {
		t.Errorf("got section %q", got.SectionNumber)
	}
	if got.ContentHash != "abc123" {
		t.Errorf("got hash %q", got.ContentHash)
	}
	if got.Size != 512 {
		t.Errorf("got size %d", got.Size)
	}
	if got.FetchedAt.IsZero() {
		t.Error("fetched_at did not round-trip")
	}
}

func TestLatestRecordMissing(t *testing.T) {
	t.Parallel()

	cdb := newTestDB(t)

	got, err := cdb.LatestRecord(context.Background(), model.CodeTypeWAC, "wac/9/9-99/section_9-99-999.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unrecorded path, got %+v", got)
	}
}

// TestAppendOnlyHistory tests that re-fetching a path appends a new row
// and LatestRecord resolves to the newest one.
func TestAppendOnlyHistory(t *testing.T) {
	t.Parallel()

	cdb := newTestDB(t)
	ctx := context.Background()
	path := "wac/1/1-04/section_1-04-010.html"

	first := newTestRecord(path, "hash-old")
	if _, err := cdb.SaveContentRecord(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := newTestRecord(path, "hash-new")
	second.FetchedAt = first.FetchedAt.Add(time.Hour)
	if _, err := cdb.SaveContentRecord(ctx, second); err != nil {
		t.Fatal(err)
	}

	latest, err := cdb.LatestRecord(ctx, model.CodeTypeWAC, path)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ContentHash != "hash-new" {
		t.Errorf("got hash %q, expected newest record", latest.ContentHash)
	}

	records, err := cdb.ListRecords(ctx, model.CodeTypeWAC)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, expected 2 (append-only)", len(records))
	}
	if records[0].ContentHash != "hash-new" {
		t.Errorf("got first hash %q, expected newest first", records[0].ContentHash)
	}
}

func TestListRecordsFiltersByCorpus(t *testing.T) {
	t.Parallel()

	cdb := newTestDB(t)
	ctx := context.Background()

	wac := newTestRecord("wac/1/title_1.html", "h1")
	wac.Kind = model.KindTitle
	wac.ChapterNumber = ""
	wac.SectionNumber = ""
	if _, err := cdb.SaveContentRecord(ctx, wac); err != nil {
		t.Fatal(err)
	}

	rcw := newTestRecord("rcw/2/title_2.html", "h2")
	rcw.CodeType = model.CodeTypeRCW
	rcw.Kind = model.KindTitle
	rcw.TitleNumber = "2"
	rcw.ChapterNumber = ""
	rcw.SectionNumber = ""
	if _, err := cdb.SaveContentRecord(ctx, rcw); err != nil {
		t.Fatal(err)
	}

	wacOnly, err := cdb.ListRecords(ctx, model.CodeTypeWAC)
	if err != nil {
		t.Fatal(err)
	}
	if len(wacOnly) != 1 || wacOnly[0].CodeType != model.CodeTypeWAC {
		t.Errorf("got %+v, expected one WAC record", wacOnly)
	}
	if wacOnly[0].ChapterNumber != "" || wacOnly[0].SectionNumber != "" {
		t.Errorf("title record carried chapter/section numbers: %+v", wacOnly[0])
	}

	all, err := cdb.ListRecords(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("got %d records for all corpora, expected 2", len(all))
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	cdb := newTestDB(t)
	ctx := context.Background()

	title := newTestRecord("wac/1/title_1.html", "h1")
	title.Kind = model.KindTitle
	title.Size = 100
	if _, err := cdb.SaveContentRecord(ctx, title); err != nil {
		t.Fatal(err)
	}

	// Two rows for the same section path, one for a second section.
	section := newTestRecord("wac/1/1-04/section_1-04-010.html", "h2")
	section.Size = 200
	if _, err := cdb.SaveContentRecord(ctx, section); err != nil {
		t.Fatal(err)
	}
	refetch := newTestRecord("wac/1/1-04/section_1-04-010.html", "h3")
	refetch.Size = 250
	if _, err := cdb.SaveContentRecord(ctx, refetch); err != nil {
		t.Fatal(err)
	}
	other := newTestRecord("wac/1/1-04/section_1-04-020.html", "h4")
	other.SectionNumber = "1-04-020"
	other.Size = 300
	if _, err := cdb.SaveContentRecord(ctx, other); err != nil {
		t.Fatal(err)
	}

	stats, err := cdb.Stats(ctx, model.CodeTypeWAC)
	if err != nil {
		t.Fatal(err)
	}

	titleStats := stats[model.KindTitle]
	if titleStats.Records != 1 || titleStats.DistinctPaths != 1 || titleStats.Bytes != 100 {
		t.Errorf("got title stats %+v", titleStats)
	}

	sectionStats := stats[model.KindSection]
	if sectionStats.Records != 3 {
		t.Errorf("got %d section records, expected 3", sectionStats.Records)
	}
	if sectionStats.DistinctPaths != 2 {
		t.Errorf("got %d distinct section paths, expected 2", sectionStats.DistinctPaths)
	}
	if sectionStats.Bytes != 750 {
		t.Errorf("got %d section bytes, expected 750", sectionStats.Bytes)
	}

	if _, ok := stats[model.KindChapter]; ok {
		t.Error("expected no chapter stats for empty kind")
	}
}
