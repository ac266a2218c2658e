package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/imgtranslate/internal/config"
	"github.com/lehigh-university-libraries/imgtranslate/internal/logging"
	"github.com/lehigh-university-libraries/imgtranslate/internal/settings"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose      bool
	settingsPath string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "imgtranslate",
		Short: "Translate the text in images into English with Gemini or DeepSeek",
		Long: `imgtranslate extracts foreign-language text from images and returns
segmented English translations.

Each image is transcribed with Gemini, then translated either by Gemini
(from the image itself) or by DeepSeek (from the extracted text). Quota
errors are retried with backoff and Gemini falls back from its premium
to its standard model when the premium quota is exhausted.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "Path to the settings file (default: user config dir)")

	cmd.AddCommand(newTranslateCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSettingsCmd(opts))

	return cmd
}

func (o *rootOptions) resolveSettingsPath() (string, error) {
	if o.settingsPath != "" {
		return o.settingsPath, nil
	}
	return settings.DefaultPath()
}

// loaded is what every command starts from
type loaded struct {
	// cfg has the saved user settings applied over env
	cfg          config.Config
	env          config.Config
	settings     settings.Settings
	settingsPath string
}

// loadConfig reads the environment, sets up logging and applies the saved
// user settings. The settings file is read here once per process.
func (o *rootOptions) loadConfig() (loaded, error) {
	env, err := config.Load()
	if err != nil {
		return loaded{}, err
	}

	level := env.LogLevel
	if o.verbose {
		level = "debug"
	}
	if err := logging.Setup(os.Stderr, level, env.LogFormat); err != nil {
		return loaded{}, err
	}

	settingsPath, err := o.resolveSettingsPath()
	if err != nil {
		return loaded{}, err
	}
	s, err := settings.Load(settingsPath)
	if err != nil {
		return loaded{}, fmt.Errorf("failed to load settings: %w", err)
	}

	l := loaded{
		cfg:          env.WithSettings(s),
		env:          env,
		settings:     s,
		settingsPath: settingsPath,
	}
	slog.Debug("Loaded configuration", "config", l.cfg, "settings", settingsPath)
	return l, nil
}
