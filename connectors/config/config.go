package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the structure of config.yml used by the tool.
// Only the fields currently needed by commands are modeled.
type Config struct {
	Jira struct {
		URL string `yaml:"url"`
		// Jira custom field carrying the story point estimate.
		PointsField string `yaml:"points_field"`
		// Project shortcuts, e.g. product: "[SCS] Product". Avoids blanks
		// on the command line.
		Projects map[string]string `yaml:"projects"`
		// Trust the server certificate even when it cannot be validated.
		InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	} `yaml:"jira"`
}

// DefaultPointsField is used when the config file does not name the story
// point custom field.
const DefaultPointsField = "customfield_10106"

// Load parses the YAML configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if c.Jira.PointsField == "" {
		c.Jira.PointsField = DefaultPointsField
	}
	log.Info().Str("path", path).Msg("config.loaded")
	return &c, nil
}

// Path resolves the config file location: CONFIG_PATH or ./config.yml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yml"
}
