package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"bate-papo/client"
	"bate-papo/client/tui"

	"github.com/Netflix/go-env"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerURL string        `env:"CHAT_SERVER_URL,default=http://localhost:5000" validate:"url"`
	User      string        `env:"CHAT_USER"`
	LogLevel  string        `env:"LOG_LEVEL,default=ERROR" validate:"oneof=DEBUG INFO WARN ERROR"`
	KeepAlive time.Duration `env:"KEEP_ALIVE_INTERVAL,default=5s" validate:"gt=0"`
	Timeout   time.Duration `env:"REQUEST_TIMEOUT,default=5s" validate:"gt=0"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return exitConfig, fmt.Errorf("invalid config: %w", err)
	}
	// A name given as first argument wins over CHAT_USER.
	if len(os.Args) > 1 {
		config.User = os.Args[1]
	}
	config.User = strings.TrimSpace(config.User)
	if config.User == "" {
		return exitConfig, fmt.Errorf("usage: client <name> (or set CHAT_USER)")
	}

	// Logs go to stderr, keep them quiet while the terminal UI owns the screen.
	logger := logs.GetLoggerFromString(config.LogLevel)
	api := client.New(config.ServerURL, config.User, logger, &http.Client{Timeout: config.Timeout})

	program := tea.NewProgram(tui.NewModel(api, config.ServerURL, config.KeepAlive), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return exitRuntime, fmt.Errorf("terminal UI failed: %w", err)
	}

	logger.Debug("Leaving chat", "user", config.User, "at", time.Now().UTC())
	return exitOK, nil
}
