package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultPort         = 3000
	DefaultDBPath       = "./zelus.db"
	DefaultResourcesDir = "./resources"
	DefaultQueryTimeout = 5 * time.Second
)

type Config struct {
	// Port the HTTP server listens on, on all interfaces.
	Port int `validate:"min=1,max=65535"`

	// DBPath is the SQLite file holding player_universe and match_results.
	DBPath string `validate:"required"`

	// ResourcesDir holds templates/, static/, locales/ and migrations/.
	ResourcesDir string `validate:"required"`

	// QueryDir optionally overrides the embedded SQL catalog with
	// <name>.sql files.
	QueryDir string

	// QueryTimeout bounds every statement sent to the database.
	QueryTimeout Duration `validate:"gt=0"`

	// RateLimit is the maximum number of requests per second, 0 disables it.
	RateLimit float64 `validate:"min=0"`

	LogLevel string `validate:"omitempty,oneof=debug info warn warning error"`

	// DevMode exposes error details in HTTP responses and logs to the console.
	DevMode bool
}

// Duration is a time.Duration stored as a string ("5s") in JSON.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	v, err := time.ParseDuration(str)
	if err != nil {
		return err
	}
	*d = Duration(v)

	return nil
}

func Default() *Config {
	return &Config{
		Port:         DefaultPort,
		DBPath:       DefaultDBPath,
		ResourcesDir: DefaultResourcesDir,
		QueryTimeout: Duration(DefaultQueryTimeout),
		LogLevel:     "info",
	}
}

// Load reads the configuration from path, falling back to the user config
// dir when path is empty. A missing file is not an error, defaults are used.
// Environment variables always take precedence over the file.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = UserConfigPath(); err != nil {
			return nil, err
		}
	}

	c := Default()
	if err := c.readFile(path); err != nil {
		return nil, errors.Wrapf(err, "unable to read config %s", path)
	}

	if err := c.expandFromEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func (c *Config) expandFromEnv() error {
	strs := []struct {
		src string
		dst *string
	}{
		{"ZELUS_DB", &c.DBPath},
		{"ZELUS_RESOURCES", &c.ResourcesDir},
		{"ZELUS_QUERIES", &c.QueryDir},
		{"ZELUS_LOG_LEVEL", &c.LogLevel},
	}

	for _, v := range strs {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	// PORT is what most hosting platforms set, ours wins if both are present.
	for _, name := range []string{"PORT", "ZELUS_PORT"} {
		str := strings.TrimSpace(os.Getenv(name))
		if str == "" {
			continue
		}

		port, err := strconv.Atoi(str)
		if err != nil {
			return errors.Wrapf(err, "parse %s", name)
		}
		c.Port = port
	}

	if str := os.Getenv("ZELUS_QUERY_TIMEOUT"); str != "" {
		d, err := time.ParseDuration(str)
		if err != nil {
			return errors.Wrap(err, "parse ZELUS_QUERY_TIMEOUT")
		}
		c.QueryTimeout = Duration(d)
	}

	if str := os.Getenv("ZELUS_RATE_LIMIT"); str != "" {
		limit, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return errors.Wrap(err, "parse ZELUS_RATE_LIMIT")
		}
		c.RateLimit = limit
	}

	if str := os.Getenv("ZELUS_DEV"); str != "" {
		dev, err := strconv.ParseBool(str)
		if err != nil {
			return errors.Wrap(err, "parse ZELUS_DEV")
		}
		c.DevMode = dev
	}

	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	return nil
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c *Config) TemplatesDir() string {
	return filepath.Join(c.ResourcesDir, "templates")
}

func (c *Config) StaticDir() string {
	return filepath.Join(c.ResourcesDir, "static")
}

func (c *Config) LocalesDir() string {
	return filepath.Join(c.ResourcesDir, "locales")
}

func (c *Config) MigrationsDir() string {
	return filepath.Join(c.ResourcesDir, "migrations")
}

// UserConfigPath is where the configuration is read from by default.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "zelus", "config.json"), nil
}

// Write saves the configuration as indented JSON to path.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return errors.Wrapf(err, "unable to close file (%s) after error", err2)
		}

		return err
	}

	return f.Close()
}
