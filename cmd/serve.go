package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"modelcfg/config"
	"modelcfg/internal/server"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default "+config.DefaultListenAddr+")")
	viper.BindPFlag(config.KeyListen, serveCmd.Flags().Lookup("listen"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configuration backend",
	Long: `Serve the configuration document over HTTP.

Endpoints:
  GET  /config   configuration document
  POST /config   replace the stored credentials
  GET  /models   loaded chat and embedding models
  GET  /health   liveness
  GET  /metrics  Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := openSettings()
		if err != nil {
			return err
		}

		srv := server.New(manager, server.RegistryCatalog())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			if err := srv.WatchSettings(ctx, manager.Path()); err != nil {
				logrus.WithError(err).Warn("Settings watcher stopped, model listings will not refresh on external edits")
			}
		}()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen(viper.GetString(config.KeyListen))
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logrus.Info("Shutting down")
			return srv.Shutdown()
		}
	},
}

// openSettings opens the settings manager and makes it the process-wide default
func openSettings() (*config.Manager, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	config.SetDefault(manager)
	return manager, nil
}
