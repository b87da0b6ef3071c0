package cmd

import (
	"path/filepath"

	"modelcfg/config"
	"modelcfg/internal/client"
	"modelcfg/internal/logging"
	"modelcfg/internal/prefs"
	"modelcfg/internal/tui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	settingsCmd.Flags().Bool("closed", false, "start with the editor closed")
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Edit the model configuration in the terminal",
	Long: `Open the settings editor.

The editor fetches the configuration from the backend (--backend-url), lets you
pick chat and embedding models and edit provider credentials, and saves them
back. Selections are stored locally in prefs.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The editor owns the terminal, so logs go to a file
		if viper.GetString(config.KeyLogFile) == "" {
			path, err := defaultLogFile()
			if err != nil {
				return err
			}
			closer, err := logging.Init(viper.GetString(config.KeyLogLevel), path)
			if err != nil {
				return err
			}
			if logCloser != nil {
				logCloser.Close()
			}
			logCloser = closer
		}

		prefsPath, err := prefs.DefaultPath()
		if err != nil {
			return err
		}

		closed, _ := cmd.Flags().GetBool("closed")
		return tui.Run(tui.Options{
			Client:      client.New(viper.GetString(config.KeyBackendURL)),
			Prefs:       prefs.New(prefsPath),
			OpenOnStart: !closed,
		})
	},
}

func defaultLogFile() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "modelcfg.log"), nil
}
