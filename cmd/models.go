package cmd

import (
	"fmt"
	"io"

	"modelcfg/config"
	"modelcfg/config/models"
	"modelcfg/internal/client"
	"modelcfg/internal/providers"
	"modelcfg/internal/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func init() {
	modelsCmd.Flags().Bool("yaml", false, "print as YAML")
	modelsCmd.Flags().Bool("remote", false, "ask the backend instead of loading providers locally")
	rootCmd.AddCommand(modelsCmd)
}

type modelListing struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"displayName"`
}

type providerListing struct {
	Provider string         `yaml:"provider"`
	Models   []modelListing `yaml:"models"`
}

type listingOutput struct {
	Chat        []providerListing `yaml:"chat"`
	Embeddings  []providerListing `yaml:"embeddings"`
	Credentials map[string]string `yaml:"credentials,omitempty"`
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available chat and embedding models",
	Long:  "List the chat and embedding models that the configured credentials give access to",
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")
		asYAML, _ := cmd.Flags().GetBool("yaml")

		var out listingOutput
		if remote {
			c := client.New(viper.GetString(config.KeyBackendURL))
			resp, err := c.FetchModels(cmd.Context())
			if err != nil {
				return err
			}
			out = newListing(resp.ChatModelProviders, resp.EmbeddingModelProviders)
		} else {
			if _, err := openSettings(); err != nil {
				return err
			}
			out = newListing(providers.ChatModelProviders(), providers.EmbeddingModelProviders())
			out.Credentials = maskedCredentials(config.EffectiveSettings())
		}

		if asYAML {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(out)
		}
		printListing(cmd.OutOrStdout(), out)
		return nil
	},
}

func newListing(chat, embeddings models.ProviderModels) listingOutput {
	return listingOutput{
		Chat:       providerListings(chat),
		Embeddings: providerListings(embeddings),
	}
}

func providerListings(pm models.ProviderModels) []providerListing {
	out := make([]providerListing, 0, pm.Len())
	for _, name := range pm.Providers() {
		list, _ := pm.Models(name)
		entry := providerListing{Provider: name, Models: make([]modelListing, 0, len(list))}
		for _, m := range list {
			entry.Models = append(entry.Models, modelListing{Name: m.Name, DisplayName: m.DisplayName})
		}
		out = append(out, entry)
	}
	return out
}

// maskedCredentials lists the configured credentials with secrets masked
func maskedCredentials(s models.Settings) map[string]string {
	out := make(map[string]string)
	secrets := map[string]string{
		"openai":     s.OpenAIAPIKey,
		"anthropic":  s.AnthropicAPIKey,
		"groq":       s.GroqAPIKey,
		"gemini":     s.GeminiAPIKey,
		"openrouter": s.OpenRouterAPIKey,
	}
	for name, v := range secrets {
		if v != "" {
			out[name] = utils.MaskAPIKey(v)
		}
	}
	if s.OllamaAPIURL != "" {
		out["ollama"] = s.OllamaAPIURL
	}
	return out
}

func printListing(w io.Writer, out listingOutput) {
	section := func(title string, list []providerListing) {
		fmt.Fprintf(w, "%s:\n", title)
		if len(list) == 0 {
			fmt.Fprintln(w, "  (no providers configured)")
			return
		}
		for _, p := range list {
			fmt.Fprintf(w, "  %s\n", p.Provider)
			for _, m := range p.Models {
				fmt.Fprintf(w, "    %-28s %s\n", m.Name, m.DisplayName)
			}
		}
	}

	section("Chat models", out.Chat)
	fmt.Fprintln(w)
	section("Embedding models", out.Embeddings)

	if len(out.Credentials) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Credentials:")
		for _, name := range []string{"openai", "ollama", "groq", "anthropic", "gemini", "openrouter"} {
			if v, ok := out.Credentials[name]; ok {
				fmt.Fprintf(w, "  %-12s %s\n", name, v)
			}
		}
	}
}
