package cmd

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/imgtranslate/internal/settings"
	"github.com/spf13/cobra"
)

func newSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved API keys and model",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved settings with keys masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := root.resolveSettingsPath()
			if err != nil {
				return err
			}
			s, err := settings.Load(path)
			if err != nil {
				return err
			}

			m := s.Masked()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:                   %s\n", path)
			fmt.Fprintf(out, "gemini_api_key:         %s\n", orUnset(m.GeminiAPIKey))
			fmt.Fprintf(out, "gemini_premium_api_key: %s\n", orUnset(m.GeminiPremiumAPIKey))
			fmt.Fprintf(out, "deepseek_api_key:       %s\n", orUnset(m.DeepSeekAPIKey))
			fmt.Fprintf(out, "deepseek_model:         %s\n", orUnset(m.DeepSeekModel))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save the file",
		Long: fmt.Sprintf(`Changes one setting and writes all settings back to the file.

Keys: %s
Pass an empty value ("") to clear a setting.`, strings.Join(settings.Keys, ", ")),
		Example:   `  imgtranslate settings set deepseek_api_key sk-...`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: settings.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := root.resolveSettingsPath()
			if err != nil {
				return err
			}
			s, err := settings.Load(path)
			if err != nil {
				return err
			}
			if err := s.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := settings.Save(path, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s to %s\n", args[0], path)
			return nil
		},
	})

	return cmd
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
