package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL  = "https://supertask-api.onrender.com/api"
	DefaultWebPort = 8080

	EnvAPIURL   = "SUPERTASK_API_URL"
	EnvLogLevel = "SUPERTASK_LOG_LEVEL"
)

type Config struct {
	APIURL         string   `json:"api_url"`
	DBPath         string   `json:"db_path"`
	ExportDir      string   `json:"export_dir"`
	WebPort        int      `json:"web_port"`
	LogLevel       string   `json:"log_level"`
	LogFormat      string   `json:"log_format"`
	RequestTimeout Duration `json:"request_timeout"`
}

// Duration reads and writes durations as strings like "30s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		WebPort:   DefaultWebPort,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "supertask", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

// ApplyEnv overlays values from a .env file in the working directory and from
// the process environment. Variables already set in the environment win over .env.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load(".env")

	if value := strings.TrimSpace(os.Getenv(EnvAPIURL)); value != "" {
		cfg.APIURL = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvLogLevel)); value != "" {
		cfg.LogLevel = value
	}
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
