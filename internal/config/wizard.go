package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to guildkeeper.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to guildkeeper! Let's configure your bot.")
	fmt.Println()

	cfg := DefaultConfig()

	tokenPrompt := promptui.Prompt{
		Label: "Discord bot token",
		Mask:  '*',
		Validate: func(s string) error {
			if s == "" {
				return fmt.Errorf("token must not be empty")
			}
			return nil
		},
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("token prompt: %w", err)
	}
	cfg.Discord.Token = token

	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: "data",
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir prompt: %w", err)
	}
	cfg.DataDir = dataDir

	dashPrompt := promptui.Select{
		Label: "Enable the web dashboard",
		Items: []string{"yes", "no"},
	}
	dashIdx, _, err := dashPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dashboard prompt: %w", err)
	}
	cfg.Dashboard.Enabled = dashIdx == 0

	if cfg.Dashboard.Enabled {
		portPrompt := promptui.Prompt{
			Label:   "Dashboard port",
			Default: "8080",
			Validate: func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n <= 0 || n > 65535 {
					return fmt.Errorf("port must be a number between 1 and 65535")
				}
				return nil
			},
		}
		portStr, err := portPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("port prompt: %w", err)
		}
		cfg.Dashboard.Port, _ = strconv.Atoi(portStr)

		idPrompt := promptui.Prompt{
			Label:   "Discord application client ID (for dashboard login, blank to skip)",
			Default: "",
		}
		clientID, err := idPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("client id prompt: %w", err)
		}
		cfg.Discord.ClientID = clientID

		if clientID != "" {
			secretPrompt := promptui.Prompt{
				Label: "Discord application client secret",
				Mask:  '*',
			}
			secret, err := secretPrompt.Run()
			if err != nil {
				return nil, fmt.Errorf("client secret prompt: %w", err)
			}
			cfg.Discord.ClientSecret = secret

			redirectPrompt := promptui.Prompt{
				Label:   "OAuth2 redirect URL",
				Default: fmt.Sprintf("http://localhost:%d/callback", cfg.Dashboard.Port),
			}
			redirect, err := redirectPrompt.Run()
			if err != nil {
				return nil, fmt.Errorf("redirect url prompt: %w", err)
			}
			cfg.Discord.RedirectURL = redirect
		}
	}

	faqPrompt := promptui.Select{
		Label: "Enable the semantic FAQ cog (requires OPENAI_API_KEY)",
		Items: []string{"no", "yes"},
	}
	faqIdx, _, err := faqPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("faq prompt: %w", err)
	}
	cfg.FAQ.Enabled = faqIdx == 1

	if cfg.FAQ.Enabled && OpenAIKey() == "" {
		fmt.Println("\nNote: set OPENAI_API_KEY in your environment before running guildkeeper run.")
	}

	configPath := "guildkeeper.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
