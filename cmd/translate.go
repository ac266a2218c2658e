package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/batch"
	"github.com/lehigh-university-libraries/imgtranslate/internal/config"
	"github.com/lehigh-university-libraries/imgtranslate/internal/export"
	"github.com/lehigh-university-libraries/imgtranslate/internal/images"
	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/translation"
	"github.com/spf13/cobra"
)

func newTranslateCmd(root *rootOptions) *cobra.Command {
	var (
		outDir      string
		parquetPath string
		provider    string
		lang        string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "translate [files or urls...]",
		Short: "Translate a batch of images",
		Long: `Translates every given image file or http(s) URL concurrently and prints
the segmented translations. Each item can also be written as a text file
and the whole batch exported to Parquet.`,
		Example: `  # Translate two local scans, auto-detecting the language
  imgtranslate translate page1.png page2.jpg

  # Force Korean and use DeepSeek for the translation step
  imgtranslate translate --lang Korean --provider deepseek page1.png

  # Write per-image text files and a Parquet export
  imgtranslate translate --out ./translations --parquet batch.parquet scans/*.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := root.loadConfig()
			if err != nil {
				return err
			}

			files, err := loadFiles(cmd.Context(), args)
			if err != nil {
				return err
			}

			o := batch.New(l.cfg, func(c config.Config) batch.Translator {
				return translation.FromConfig(c)
			})
			defer o.Close()

			result, err := o.Add(files, batch.Options{Provider: strings.ToLower(provider), LanguageHint: lang})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := o.Wait(ctx); err != nil {
				return fmt.Errorf("failed waiting for translations: %w", err)
			}

			items := o.Items()
			now := time.Now()
			printItems(cmd.OutOrStdout(), items, now)

			if outDir != "" {
				if err := writeArtifacts(outDir, items, now); err != nil {
					return err
				}
			}
			if parquetPath != "" {
				if err := export.WriteParquet(parquetPath, items); err != nil {
					return err
				}
			}

			if result.CredentialsRequired {
				return fmt.Errorf("missing API keys: set them with 'imgtranslate settings set' or the environment")
			}
			failed := 0
			for _, item := range items {
				if item.Status == models.StatusError {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed to translate", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write one translation text file per image")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Write all segments to this Parquet file")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Translation provider: gemini or deepseek (default from TRANSLATION_PROVIDER)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Source language hint, or auto (default from LANGUAGE_HINT)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up waiting after this long (0 waits forever)")

	return cmd
}

func loadFiles(ctx context.Context, sources []string) ([]batch.File, error) {
	fetcher := images.NewFetcher()
	files := make([]batch.File, 0, len(sources))
	for _, source := range sources {
		data, name, err := fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		img, err := images.Load(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		slog.Debug("Loaded image", "source", source, "mime", img.MIMEType, "width", img.Width, "height", img.Height)
		files = append(files, batch.File{Filename: name, Image: img})
	}
	return files, nil
}

func printItems(w io.Writer, items []models.BatchItem, now time.Time) {
	for i, item := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, export.Text(item, now))
	}
}

func writeArtifacts(dir string, items []models.BatchItem, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	for _, item := range items {
		if !item.Terminal() {
			continue
		}
		path := filepath.Join(dir, export.Filename(item))
		if err := os.WriteFile(path, []byte(export.Text(item, now)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		slog.Info("Wrote translation", "path", path)
	}
	return nil
}
