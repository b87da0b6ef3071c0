package cmd

import (
	"context"
	"fmt"
	"time"

	"modelcfg/internal/prefs"
	"modelcfg/internal/providers"
	"modelcfg/internal/tui"
	"modelcfg/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	embedCmd.Flags().StringP("provider", "p", "", "embedding provider (default: stored selection)")
	embedCmd.Flags().StringP("model", "m", "", "embedding model (default: stored selection)")
	embedCmd.Flags().Duration("timeout", time.Minute, "request timeout")
	rootCmd.AddCommand(embedCmd)
}

var embedCmd = &cobra.Command{
	Use:   "embed <text>...",
	Short: "Embed texts with the selected embedding model",
	Long:  "Embed each argument with the embedding model selected in the settings editor and print the vector sizes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openSettings(); err != nil {
			return err
		}

		prefsPath, err := prefs.DefaultPath()
		if err != nil {
			return err
		}
		stored, err := prefs.New(prefsPath).All()
		if err != nil {
			return err
		}

		available := providers.EmbeddingModelProviders()
		providerFlag, _ := cmd.Flags().GetString("provider")
		modelFlag, _ := cmd.Flags().GetString("model")

		storedModel := stored[prefs.EmbeddingModel]
		if providerFlag != "" && providerFlag != stored[prefs.EmbeddingModelProvider] {
			storedModel = ""
		}
		provider := tui.ResolveProvider(available, utils.FirstNonEmpty(providerFlag, stored[prefs.EmbeddingModelProvider]))
		if provider == "" {
			return fmt.Errorf("no embedding provider configured, run 'modelcfg settings' first")
		}
		name := tui.ResolveModel(available, provider, utils.FirstNonEmpty(modelFlag, storedModel))

		model, err := providers.ResolveEmbeddingModel(provider, name)
		if err != nil {
			return err
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		vectors, err := model.Embed(ctx, args)
		if err != nil {
			return err
		}
		for i, v := range vectors {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d dims\t%s\n", i, len(v), args[i])
		}
		return nil
	},
}
