package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=5000" validate:"gt=0,lte=65535"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	StoreDriver     string        `env:"STORE_DRIVER,default=badger" validate:"oneof=badger sqlite"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,default=./data/badger"`
	SQLiteFilepath  string        `env:"SQLITE_FILEPATH,default=./data/bate-papo.db"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT,default=3s" validate:"gt=0"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=15s" validate:"gt=0"`
	LivenessTimeout time.Duration `env:"LIVENESS_TIMEOUT,default=10s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
	// RateLimitRPS at 0 disables rate limiting.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=0" validate:"gte=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=20" validate:"gte=0"`
	// ModerationWords is a comma separated list of banned words, empty disables moderation.
	ModerationWords     string `env:"MODERATION_WORDS"`
	ModerationCharacter string `env:"MODERATION_CHARACTER,default=*"`
	DebugPort           int    `env:"DEBUG_PORT,default=8081" validate:"gt=0,lte=65535"`
	AllowedOrigins      string `env:"ALLOWED_ORIGINS,default=*"`
}

var validate = validator.New()

// Validate checks what the env tags cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.StoreDriver == StoreBadger && strings.TrimSpace(c.BadgerFilepath) == "" {
		return fmt.Errorf("invalid config: BADGER_FILEPATH is required with the badger store")
	}
	if c.StoreDriver == StoreSQLite && strings.TrimSpace(c.SQLiteFilepath) == "" {
		return fmt.Errorf("invalid config: SQLITE_FILEPATH is required with the sqlite store")
	}
	if _, err := CharacterRune(c.ModerationCharacter); err != nil {
		return err
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) BannedWords() []string {
	return splitList(c.ModerationWords)
}

func (c Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
