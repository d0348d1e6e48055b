package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	OAuth   OAuthConfig   `mapstructure:"oauth"`
	Photos  PhotosConfig  `mapstructure:"photos"`
	Secrets SecretsConfig `mapstructure:"secrets"`
}

type OAuthConfig struct {
	RedirectPort   int `mapstructure:"redirect_port"`
	TimeoutMinutes int `mapstructure:"timeout_minutes"`
}

type PhotosConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type SecretsConfig struct {
	Vault string `mapstructure:"vault"`
	Item  string `mapstructure:"item"`
}

var defaultConfig = Config{
	OAuth: OAuthConfig{
		RedirectPort:   8487,
		TimeoutMinutes: 5,
	},
	Photos: PhotosConfig{
		PageSize: 25,
	},
	Secrets: SecretsConfig{
		Vault: "Private",
		Item:  "Google OAuth CLI",
	},
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigName("config")

	if configPath == "" {
		configDir, err := getDefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		configPath = configDir
	}

	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	setDefaults(v)

	// The secrets vault/item selection can come from the environment,
	// which wins over the config file.
	if err := v.BindEnv("secrets.vault", "GOOGLE_CLI_VAULT"); err != nil {
		return nil, fmt.Errorf("failed to bind vault env var: %w", err)
	}
	if err := v.BindEnv("secrets.item", "GOOGLE_CLI_ITEM"); err != nil {
		return nil, fmt.Errorf("failed to bind item env var: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// If config file doesn't exist, create it with defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createDefaultConfig(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			// Try to read again after creating
			if err := v.ReadInConfig(); err != nil {
				// If it still fails, just use defaults
				cfg := defaultConfig
				applyEnvOverrides(v, &cfg)
				return &cfg, nil
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("oauth.redirect_port", defaultConfig.OAuth.RedirectPort)
	v.SetDefault("oauth.timeout_minutes", defaultConfig.OAuth.TimeoutMinutes)

	v.SetDefault("photos.page_size", defaultConfig.Photos.PageSize)

	v.SetDefault("secrets.vault", defaultConfig.Secrets.Vault)
	v.SetDefault("secrets.item", defaultConfig.Secrets.Item)
}

func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if vault := v.GetString("secrets.vault"); vault != "" {
		cfg.Secrets.Vault = vault
	}
	if item := v.GetString("secrets.item"); item != "" {
		cfg.Secrets.Item = item
	}
}

func createDefaultConfig(configPath string) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.toml")

	// Check if config already exists
	if _, err := os.Stat(configFile); err == nil {
		return nil
	}

	configContent := `# google-task-cli configuration

[oauth]
redirect_port = 8487   # must match the redirect URI registered for the OAuth client
timeout_minutes = 5    # how long to wait for the browser consent round-trip

[photos]
page_size = 25         # media items requested per page

[secrets]
vault = "Private"             # 1Password vault holding the OAuth client item
item = "Google OAuth CLI"     # item with client_id / client_secret fields
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func getDefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "google-task-cli"), nil
}

// GetDefaultConfigDir returns the user-scoped configuration directory,
// which also holds the persisted OAuth token.
func GetDefaultConfigDir() (string, error) {
	return getDefaultConfigDir()
}
