package cmd

import (
	"os"
	"time"

	"modelcfg/config/models"
	"modelcfg/internal/prefs"
	"modelcfg/internal/probe"
	"modelcfg/internal/providers"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	checkCmd.Flags().Bool("json", false, "print results as JSON")
	checkCmd.Flags().Bool("all-models", false, "probe every model instead of the first of each provider")
	checkCmd.Flags().Duration("timeout", 30*time.Second, "timeout per request")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [provider]...",
	Short: "Probe the configured chat models",
	Long: `Send a minimal request to the configured chat models and report whether they answer.

Exit codes:
  0  every model answered
  1  a request failed
  2  degraded (empty reply or slow answer)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openSettings(); err != nil {
			return err
		}

		allModels, _ := cmd.Flags().GetBool("all-models")
		targets := chatProbeTargets(providers.ChatModelProviders(), args, allModels)

		if wantsProvider(args, providers.CustomOpenAI) {
			if target, ok := customEndpointTarget(); ok {
				targets = append(targets, target)
			}
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		results := probe.New(probe.WithTimeout(timeout)).ProbeAll(cmd.Context(), targets)

		asJSON, _ := cmd.Flags().GetBool("json")
		if err := probe.NewReporter(cmd.OutOrStdout(), probe.WithJSONOutput(asJSON)).Report(results); err != nil {
			return err
		}

		if code := probe.Overall(results); code != probe.ExitCodeSuccess {
			if logCloser != nil {
				logCloser.Close()
			}
			os.Exit(code)
		}
		return nil
	},
}

// chatProbeTargets lists the models to probe, in registry order.
// Models that fail to resolve are logged and skipped.
func chatProbeTargets(available models.ProviderModels, only []string, allModels bool) []probe.Target {
	var targets []probe.Target
	for _, provider := range available.Providers() {
		if !wantsProvider(only, provider) {
			continue
		}
		list, _ := available.Models(provider)
		if !allModels && len(list) > 1 {
			list = list[:1]
		}
		for _, m := range list {
			chat, err := providers.ResolveChatModel(provider, m.Name)
			if err != nil {
				logrus.WithError(err).Warn("Skipping model")
				continue
			}
			targets = append(targets, probe.Target{Provider: provider, Model: m.Name, Chat: chat})
		}
	}
	return targets
}

// customEndpointTarget builds the custom endpoint selected in the settings editor
func customEndpointTarget() (probe.Target, bool) {
	path, err := prefs.DefaultPath()
	if err != nil {
		return probe.Target{}, false
	}
	stored, err := prefs.New(path).All()
	if err != nil || stored[prefs.CustomOpenAIBaseURL] == "" {
		return probe.Target{}, false
	}

	model := ""
	if stored[prefs.ChatModelProvider] == providers.CustomOpenAI {
		model = stored[prefs.ChatModel]
	}
	chat, err := providers.NewCustomChatModel(model, stored[prefs.CustomOpenAIAPIKey], stored[prefs.CustomOpenAIBaseURL])
	if err != nil {
		logrus.WithError(err).Warn("Skipping custom endpoint")
		return probe.Target{}, false
	}
	return probe.Target{Provider: providers.CustomOpenAI, Model: model, Chat: chat}, true
}

func wantsProvider(only []string, provider string) bool {
	if len(only) == 0 {
		return true
	}
	for _, p := range only {
		if p == provider {
			return true
		}
	}
	return false
}
