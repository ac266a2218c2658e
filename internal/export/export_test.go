package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/parquet-go/parquet-go"
)

var fixedTime = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func successItem() models.BatchItem {
	return models.BatchItem{
		ID:       "item-1",
		Filename: "page1.png",
		Status:   models.StatusSuccess,
		Result: &models.TranslationResult{
			DetectedLanguage: "Korean",
			Segments: []models.Segment{
				{Source: "안녕하세요, 선배님.", Target: "Hello, senior."},
				{Source: "잘 지냈어?", Target: "How have you been?"},
			},
		},
	}
}

func TestText(t *testing.T) {
	got := Text(successItem(), fixedTime)

	for _, want := range []string{
		"File: page1.png\n",
		"Detected language: Korean\n",
		"Translated: 2026-10-17T09:30:00Z\n",
		"Original: 안녕하세요, 선배님.\nEnglish: Hello, senior.\n" + segmentRule,
		"Original: 잘 지냈어?\nEnglish: How have you been?\n" + segmentRule,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected artifact to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Index(got, "선배님") > strings.Index(got, "잘 지냈어") {
		t.Error("Expected segments in reading order")
	}
}

func TestTextEmptyAndError(t *testing.T) {
	empty := models.BatchItem{Filename: "blank.png", Status: models.StatusSuccess, Result: models.EmptyResult()}
	if got := Text(empty, fixedTime); !strings.Contains(got, "Detected language: Unknown") || !strings.Contains(got, "No text found.") {
		t.Errorf("Unexpected empty artifact:\n%s", got)
	}

	failed := models.BatchItem{Filename: "bad.png", Status: models.StatusError, Error: "gemini: quota exceeded"}
	if got := Text(failed, fixedTime); !strings.Contains(got, "Error: gemini: quota exceeded") {
		t.Errorf("Unexpected error artifact:\n%s", got)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(models.BatchItem{ID: "x", Filename: "scans/page1.jpeg"}); got != "page1_translation.txt" {
		t.Errorf("Expected page1_translation.txt, got %s", got)
	}
	if got := Filename(models.BatchItem{ID: "x"}); got != "x_translation.txt" {
		t.Errorf("Expected id fallback, got %s", got)
	}
}

func TestWriteParquet(t *testing.T) {
	failed := models.BatchItem{ID: "item-2", Filename: "bad.png", Status: models.StatusError, Error: "boom"}
	path := filepath.Join(t.TempDir(), "batch.parquet")

	if err := WriteParquet(path, []models.BatchItem{successItem(), failed}); err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		t.Fatalf("Failed to open parquet: %v", err)
	}
	if pf.NumRows() != 3 {
		t.Errorf("Expected 3 rows (2 segments + 1 failure), got %d", pf.NumRows())
	}

	reader := parquet.NewGenericReader[SegmentRecord](pf)
	defer reader.Close()
	rows := make([]SegmentRecord, 3)
	n, _ := reader.Read(rows)
	if n != 3 {
		t.Fatalf("Expected to read 3 rows, got %d", n)
	}
	if rows[1].Target != "How have you been?" || rows[1].SegmentIndex != 1 {
		t.Errorf("Unexpected second row %+v", rows[1])
	}
	if rows[2].Status != "error" || rows[2].SegmentIndex != -1 || rows[2].Error != "boom" {
		t.Errorf("Unexpected failure row %+v", rows[2])
	}
}
