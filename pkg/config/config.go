/*
Package config manages TOML config for glyphseg services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/typefrag/glyphseg/internal/utils"
	"github.com/typefrag/glyphseg/pkg/search"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	Ambig  AmbigConfig  `toml:"ambig"`
	Search SearchConfig `toml:"search"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit  int `toml:"max_limit"`
	MinPrefix int `toml:"min_prefix"`
	MaxPrefix int `toml:"max_prefix"`
}

// DictConfig holds word graph options.
type DictConfig struct {
	MaxEdges     int    `toml:"max_edges"`
	WordListPath string `toml:"word_list_path"`
}

// AmbigConfig holds ambiguity table options.
type AmbigConfig struct {
	RulesPath         string `toml:"rules_path"`
	UseDefiniteAmbigs bool   `toml:"use_definite_ambigs"`
}

// SearchConfig tunes the segmentation search.
type SearchConfig struct {
	MaxStates          int     `toml:"max_states"`
	SegcostBias        float64 `toml:"segcost_bias"`
	OutOfDictThreshold float64 `toml:"out_of_dict_threshold"`
	OutOfDictPenalty   float64 `toml:"out_of_dict_penalty"`
	DangerousDelta     float64 `toml:"dangerous_delta"`
}

// Options maps the [search] section onto the segmentation search tuning.
// Zero or out-of-range values defer to the search defaults.
func (c SearchConfig) Options() search.Options {
	return search.Options{
		MaxStates:           c.MaxStates,
		SegcostBias:         c.SegcostBias,
		OutOfDictThreshold:  c.OutOfDictThreshold,
		OutOfDictPenalty:    c.OutOfDictPenalty,
		DangerousAmbigDelta: c.DangerousDelta,
	}
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
	primaryPath := filepath.Join(homeDir, ".config", "glyphseg")
	if utils.DirWritable(primaryPath) {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "glyphseg")
	if utils.DirWritable(macOSPath) {
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
// 2. Default path: [UserConfigDir]/glyphseg/config.toml
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
		Server: ServerConfig{
			MaxLimit:  64,
			MinPrefix: 1,
			MaxPrefix: 60,
		},
		Dict: DictConfig{
			MaxEdges: 10_000_000,
		},
		Ambig: AmbigConfig{
			UseDefiniteAmbigs: false,
		},
		Search: SearchConfig{
			MaxStates:          30,
			SegcostBias:        0.125,
			OutOfDictThreshold: 1.25,
			OutOfDictPenalty:   1.25,
			DangerousDelta:     0.5,
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
	return config, nil
}

// tryPartialParse salvages whatever valid sections a broken TOML file still
// has, leaving defaults in place for the rest
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(dictSection, &config.Dict)
	}
	if ambigSection, ok := utils.ExtractSection(tempConfig, "ambig"); ok {
		extractAmbigConfig(ambigSection, &config.Ambig)
	}
	if searchSection, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(searchSection, &config.Search)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractInt64(data, "max_edges"); ok {
		dict.MaxEdges = val
	}
	if val, ok := utils.ExtractString(data, "word_list_path"); ok {
		dict.WordListPath = val
	}
}

func extractAmbigConfig(data map[string]any, ambig *AmbigConfig) {
	if val, ok := utils.ExtractString(data, "rules_path"); ok {
		ambig.RulesPath = val
	}
	if val, ok := utils.ExtractBool(data, "use_definite_ambigs"); ok {
		ambig.UseDefiniteAmbigs = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractInt64(data, "max_states"); ok {
		search.MaxStates = val
	}
	if val, ok := utils.ExtractFloat64(data, "segcost_bias"); ok {
		search.SegcostBias = val
	}
	if val, ok := utils.ExtractFloat64(data, "out_of_dict_threshold"); ok {
		search.OutOfDictThreshold = val
	}
	if val, ok := utils.ExtractFloat64(data, "out_of_dict_penalty"); ok {
		search.OutOfDictPenalty = val
	}
	if val, ok := utils.ExtractFloat64(data, "dangerous_delta"); ok {
		search.DangerousDelta = val
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
