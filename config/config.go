package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingSetting = errors.New("missing-setting")

type Config struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	PostgresURL    string        `yaml:"postgres_url"`
	JWTKey         string        `yaml:"jwt_key"`
	Debug          bool          `yaml:"debug"`
	TokenAge       time.Duration `yaml:"token_age"`
	// EditorRate is the number of frames per second an editor socket may send.
	EditorRate  float64 `yaml:"editor_rate"`
	EditorBurst int     `yaml:"editor_burst"`
	// LibraryRate is the number of library writes per second per user.
	LibraryRate  float64 `yaml:"library_rate"`
	LibraryBurst int     `yaml:"library_burst"`
}

func Defaults() Config {
	return Config{
		Port:         "8080",
		TokenAge:     time.Hour * 24 * 7, // 7 days
		EditorRate:   120,
		EditorBurst:  240,
		LibraryRate:  1,
		LibraryBurst: 10,
	}
}

// LookupFunc reads one setting, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv copies the variables of the given files (".env" when none is
// given) into the environment. Variables already set are kept and missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads .env, then the YAML file named by CONFIG_FILE if any, then the
// environment. Later sources win.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromLookup(os.LookupEnv)
}

func FromLookup(lookup LookupFunc) (Config, error) {
	cfg := Defaults()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := overlayEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	var missing []string
	if len(cfg.AllowedOrigins) == 0 {
		missing = append(missing, "ALLOWED_ORIGINS")
	}
	if cfg.PostgresURL == "" {
		missing = append(missing, "POSTGRES_URL")
	}
	if cfg.JWTKey == "" {
		missing = append(missing, "JWT_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func overlayEnv(cfg *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	parsed := func(key string, parse func(string) error) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		if err := parse(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}

	str("PORT", &cfg.Port)
	str("POSTGRES_URL", &cfg.PostgresURL)
	str("JWT_KEY", &cfg.JWTKey)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return errors.Join(
		parsed("DEBUG", func(v string) (err error) {
			cfg.Debug, err = strconv.ParseBool(v)
			return err
		}),
		parsed("TOKEN_AGE", func(v string) (err error) {
			cfg.TokenAge, err = time.ParseDuration(v)
			return err
		}),
		parsed("EDITOR_RATE", func(v string) (err error) {
			cfg.EditorRate, err = strconv.ParseFloat(v, 64)
			return err
		}),
		parsed("EDITOR_BURST", func(v string) (err error) {
			cfg.EditorBurst, err = strconv.Atoi(v)
			return err
		}),
		parsed("LIBRARY_RATE", func(v string) (err error) {
			cfg.LibraryRate, err = strconv.ParseFloat(v, 64)
			return err
		}),
		parsed("LIBRARY_BURST", func(v string) (err error) {
			cfg.LibraryBurst, err = strconv.Atoi(v)
			return err
		}),
	)
}
