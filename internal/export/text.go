package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
)

const (
	headerRule  = "============================================================"
	segmentRule = "------------------------------------------------------------"
)

// Text renders the downloadable translation of a single item
func Text(item models.BatchItem, now time.Time) string {
	var b strings.Builder

	language := models.UnknownLanguage
	if item.Result != nil && item.Result.DetectedLanguage != "" {
		language = item.Result.DetectedLanguage
	}

	fmt.Fprintf(&b, "File: %s\n", item.Filename)
	fmt.Fprintf(&b, "Detected language: %s\n", language)
	fmt.Fprintf(&b, "Translated: %s\n", now.Format(time.RFC3339))
	b.WriteString(headerRule + "\n")

	if item.Status == models.StatusError {
		fmt.Fprintf(&b, "\nError: %s\n", item.Error)
		return b.String()
	}
	if item.Result == nil || len(item.Result.Segments) == 0 {
		b.WriteString("\nNo text found.\n")
		return b.String()
	}

	for _, seg := range item.Result.Segments {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Original: %s\n", seg.Source)
		fmt.Fprintf(&b, "English: %s\n", seg.Target)
		b.WriteString(segmentRule + "\n")
	}
	return b.String()
}

// Filename returns the artifact name for an item, e.g. page1_translation.txt
func Filename(item models.BatchItem) string {
	base := strings.TrimSuffix(filepath.Base(item.Filename), filepath.Ext(item.Filename))
	if base == "" || base == "." {
		base = item.ID
	}
	return base + "_translation.txt"
}
