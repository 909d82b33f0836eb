// Package config resolves the scr settings from flags, environment and the keys file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	DefaultDB       = "assets/securities.db"
	DefaultKeysFile = "assets/api_keys.txt"
	DefaultLogLevel = "info"
	DefaultSymbols  = "assets/symbols.txt"
)

// Config holds the settings of a scr session.
type Config struct {
	DB              string // SQLite database path
	KeysFile        string // key=value file holding the API keys
	TDAmeritradeKey string
	EODHDKey        string
	AlphaVantageKey string
	Symbols         string // one symbol per line, for the intraday performance
	LogLevel        string
	LogDir          string // no log file if empty
	CacheDir        string // HTTP cache, the system temp dir if empty
}

// setting binds a Config field to its environment variable and keys file entries.
type setting struct {
	field *string
	env   string
	keys  []string
	def   string
}

func (c *Config) settings() []setting {
	return []setting{
		{&c.DB, "SCR_DB", []string{"db", "SCR_DB"}, DefaultDB},
		{&c.TDAmeritradeKey, "TD_AMERITRADE_API_KEY", []string{"td_ameritrade", "TD_AMERITRADE_API_KEY"}, ""},
		{&c.EODHDKey, "EODHD_API_KEY", []string{"eodhd", "EODHD_API_KEY"}, ""},
		{&c.AlphaVantageKey, "ALPHA_VANTAGE_API_KEY", []string{"alpha_vantage", "ALPHA_VANTAGE_API_KEY"}, ""},
		{&c.Symbols, "SCR_SYMBOLS", []string{"symbols", "SCR_SYMBOLS"}, DefaultSymbols},
		{&c.LogLevel, "SCR_LOG_LEVEL", []string{"log_level", "SCR_LOG_LEVEL"}, DefaultLogLevel},
		{&c.LogDir, "SCR_LOG_DIR", []string{"log_dir", "SCR_LOG_DIR"}, ""},
		{&c.CacheDir, "SCR_CACHE_DIR", []string{"cache_dir", "SCR_CACHE_DIR"}, ""},
	}
}

// Load completes the non empty fields of flags with, in order, the
// environment, the keys file and the defaults.
//
// A missing keys file is ignored.
func Load(flags Config) (Config, error) {
	c := flags
	if c.KeysFile == "" {
		c.KeysFile = os.Getenv("SCR_KEYS_FILE")
	}
	if c.KeysFile == "" {
		c.KeysFile = DefaultKeysFile
	}
	file, err := godotenv.Read(c.KeysFile)
	if errors.Is(err, fs.ErrNotExist) {
		file, err = map[string]string{}, nil
	}
	if err != nil {
		return c, fmt.Errorf("cannot read keys file %q: %w", c.KeysFile, err)
	}

	for _, s := range c.settings() {
		if *s.field != "" {
			continue
		}
		if v := os.Getenv(s.env); v != "" {
			*s.field = v
			continue
		}
		for _, k := range s.keys {
			if v := file[k]; v != "" {
				*s.field = v
				break
			}
		}
		if *s.field == "" {
			*s.field = s.def
		}
	}
	return c, nil
}
