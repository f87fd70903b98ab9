/*
Package config manages TOML config for LexServe sessions.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/lexserve/lexserve/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Dict       DictConfig       `toml:"dict"`
	Completion CmpConfig        `toml:"completion"`
	Formatting FormattingConfig `toml:"formatting"`
	Server     ServerConfig     `toml:"server"`
}

// DictConfig points at the dictionary and frequency sources.
type DictConfig struct {
	Path          string `toml:"path"`
	FrequencyPath string `toml:"frequency_path"`
}

// CmpConfig holds completion options.
type CmpConfig struct {
	Enabled     bool `toml:"enabled"`
	MaxDistance int  `toml:"max_distance"`
	MaxResults  int  `toml:"max_results"`
}

// FormattingConfig holds the templates used to render dictionary entries.
// Placeholders: {word}, {part}, {num}, {definition}, {example}.
type FormattingConfig struct {
	WordFormat         string `toml:"word_format"`
	PartOfSpeechFormat string `toml:"part_of_speech_format"`
	DefinitionFormat   string `toml:"definition_format"`
	ExampleFormat      string `toml:"example_format"`
	AddSpacing         bool   `toml:"add_spacing"`
}

// ServerConfig has protocol related options.
type ServerConfig struct {
	MaxPrefix int `toml:"max_prefix"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "lexserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "lexserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/lexserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dict: DictConfig{
			Path:          "",
			FrequencyPath: "",
		},
		Completion: CmpConfig{
			Enabled:     true,
			MaxDistance: 2,
			MaxResults:  24,
		},
		Formatting: FormattingConfig{
			WordFormat:         "**{word}**",
			PartOfSpeechFormat: "_{part}_",
			DefinitionFormat:   "{num}. {definition}",
			ExampleFormat:      "   > Example: _{example}_",
			AddSpacing:         false,
		},
		Server: ServerConfig{
			MaxPrefix: 60,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.Clamp()
	return config, nil
}

// Clamp forces option values into their supported ranges.
// Fuzzy distances above 3 defeat the pruning bound, and a zero result cap
// would make every completion empty.
func (c *Config) Clamp() {
	if c.Completion.MaxDistance < 0 {
		c.Completion.MaxDistance = 0
	}
	if c.Completion.MaxDistance > 3 {
		c.Completion.MaxDistance = 3
	}
	if c.Completion.MaxResults < 1 {
		c.Completion.MaxResults = DefaultConfig().Completion.MaxResults
	}
	if c.Server.MaxPrefix < 1 {
		c.Server.MaxPrefix = DefaultConfig().Server.MaxPrefix
	}
}

// tryPartialParse attempts to parse a TOML file section by section,
// keeping defaults for whatever cannot be recovered.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(dictSection, &config.Dict)
	}
	if cmpSection, ok := utils.ExtractSection(tempConfig, "completion"); ok {
		extractCmpConfig(cmpSection, &config.Completion)
	}
	if fmtSection, ok := utils.ExtractSection(tempConfig, "formatting"); ok {
		extractFormattingConfig(fmtSection, &config.Formatting)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	config.Clamp()
	return config, nil
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractString(data, "frequency_path"); ok {
		dict.FrequencyPath = val
	}
}

func extractCmpConfig(data map[string]any, cmp *CmpConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		cmp.Enabled = val
	}
	if val, ok := utils.ExtractInt64(data, "max_distance"); ok {
		cmp.MaxDistance = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		cmp.MaxResults = val
	}
}

func extractFormattingConfig(data map[string]any, f *FormattingConfig) {
	if val, ok := utils.ExtractString(data, "word_format"); ok {
		f.WordFormat = val
	}
	if val, ok := utils.ExtractString(data, "part_of_speech_format"); ok {
		f.PartOfSpeechFormat = val
	}
	if val, ok := utils.ExtractString(data, "definition_format"); ok {
		f.DefinitionFormat = val
	}
	if val, ok := utils.ExtractString(data, "example_format"); ok {
		f.ExampleFormat = val
	}
	if val, ok := utils.ExtractBool(data, "add_spacing"); ok {
		f.AddSpacing = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
