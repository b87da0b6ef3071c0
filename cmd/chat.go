package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"modelcfg/config/models"
	"modelcfg/internal/prefs"
	"modelcfg/internal/providers"
	"modelcfg/internal/tui"
	"modelcfg/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	chatCmd.Flags().StringP("provider", "p", "", "chat provider (default: stored selection)")
	chatCmd.Flags().StringP("model", "m", "", "chat model (default: stored selection)")
	chatCmd.Flags().StringP("system", "s", "", "system prompt")
	chatCmd.Flags().Duration("timeout", 2*time.Minute, "request timeout")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Send one prompt to the selected chat model",
	Long: `Send one prompt to the chat model selected in the settings editor and print the reply.

The prompt is read from stdin when no argument is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		if prompt == "" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read prompt: %w", err)
			}
			prompt = strings.TrimSpace(string(data))
		}
		if prompt == "" {
			return fmt.Errorf("empty prompt")
		}

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

		providerFlag, _ := cmd.Flags().GetString("provider")
		modelFlag, _ := cmd.Flags().GetString("model")
		target := resolveChatTarget(stored, providerFlag, modelFlag, providers.ChatModelProviders())

		model, err := target.build()
		if err != nil {
			return err
		}

		var messages []providers.Message
		if system, _ := cmd.Flags().GetString("system"); system != "" {
			messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: system})
		}
		messages = append(messages, providers.Message{Role: providers.RoleUser, Content: prompt})

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		logrus.WithFields(logrus.Fields{
			"provider": target.provider,
			"model":    target.model,
		}).Debug("Invoking chat model")

		reply, err := model.Invoke(ctx, messages)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

// chatTarget is the chat model a prompt is sent to
type chatTarget struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
}

// resolveChatTarget applies flags over the stored selection, then the same
// first-available defaults as the settings editor.
func resolveChatTarget(stored map[string]string, providerFlag, modelFlag string, available models.ProviderModels) chatTarget {
	storedProvider := stored[prefs.ChatModelProvider]
	storedModel := stored[prefs.ChatModel]
	if providerFlag != "" && providerFlag != storedProvider {
		// the stored model belongs to another provider
		storedModel = ""
	}

	provider := tui.ResolveProvider(available, utils.FirstNonEmpty(providerFlag, storedProvider))
	model := tui.ResolveModel(available, provider, utils.FirstNonEmpty(modelFlag, storedModel))

	return chatTarget{
		provider: provider,
		model:    model,
		apiKey:   stored[prefs.CustomOpenAIAPIKey],
		baseURL:  stored[prefs.CustomOpenAIBaseURL],
	}
}

func (t chatTarget) build() (*providers.ChatModel, error) {
	if t.provider == "" {
		return nil, fmt.Errorf("no chat provider configured, run 'modelcfg settings' first")
	}
	if t.provider == providers.CustomOpenAI {
		return providers.NewCustomChatModel(t.model, t.apiKey, t.baseURL)
	}
	return providers.ResolveChatModel(t.provider, t.model)
}
