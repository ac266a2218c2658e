package export

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/parquet-go/parquet-go"
)

// SegmentRecord is one row of a batch export: a single segment of a
// single item. Failed and empty items produce one row with index -1.
type SegmentRecord struct {
	ItemID           string `parquet:"item_id"`
	Filename         string `parquet:"filename"`
	Status           string `parquet:"status"`
	DetectedLanguage string `parquet:"detected_language"`
	SegmentIndex     int32  `parquet:"segment_index"`
	Source           string `parquet:"source"`
	Target           string `parquet:"target"`
	Error            string `parquet:"error"`
}

// Records flattens items into export rows in upload and reading order
func Records(items []models.BatchItem) []SegmentRecord {
	var records []SegmentRecord
	for _, item := range items {
		base := SegmentRecord{
			ItemID:       item.ID,
			Filename:     item.Filename,
			Status:       string(item.Status),
			SegmentIndex: -1,
			Error:        item.Error,
		}
		if item.Result != nil {
			base.DetectedLanguage = item.Result.DetectedLanguage
		}
		if item.Result == nil || len(item.Result.Segments) == 0 {
			records = append(records, base)
			continue
		}
		for i, seg := range item.Result.Segments {
			rec := base
			rec.SegmentIndex = int32(i)
			rec.Source = seg.Source
			rec.Target = seg.Target
			records = append(records, rec)
		}
	}
	return records
}

// WriteParquet writes every segment of items to a parquet file at path
func WriteParquet(path string, items []models.BatchItem) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	records := Records(items)
	writer := parquet.NewGenericWriter[SegmentRecord](file)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	slog.Info("Wrote parquet export", "path", path, "items", len(items), "rows", len(records))
	return nil
}
