package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"bate-papo/client"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerURL == "" {
		s.T().Skip("CHAT_SERVER_URL is not set")
	}
}

// Client builds an API client for user whose every call is logged on t
func (s *BaseHTTPSuite) Client(t *testing.T, user string) *client.Client {
	httpClient := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &loggingTransport{t: t, debugJSON: s.Config.DebugJSON, next: http.DefaultTransport},
	}
	return client.New(s.Config.ServerURL, user, logs.GetLoggerFromLevel(slog.LevelWarn), httpClient)
}

// WithClient runs fn as user within a contextual test step
func (s *BaseHTTPSuite) WithClient(name, user string, fn func(ctx context.Context, c *client.Client)) {
	t := s.T()
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, s.Client(t, user))
}

// Duration parses one of the timing settings shared with the server
func (s *BaseHTTPSuite) Duration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	s.Require().NoError(err)
	return d
}

type loggingTransport struct {
	t         *testing.T
	debugJSON bool
	next      http.RoundTripper
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if l.debugJSON && req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	resp, err := l.next.RoundTrip(req)

	logBuilder := strings.Builder{}
	if err != nil {
		fmt.Fprintf(&logBuilder, "HTTP %s %s [error] in %v: %v", req.Method, req.URL.Path, time.Since(start), err)
		l.t.Log(logBuilder.String())
		return resp, err
	}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
	if l.debugJSON {
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", reqBody, respBody)
	}
	l.t.Log(logBuilder.String())
	return resp, nil
}
