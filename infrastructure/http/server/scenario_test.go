package server

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"bate-papo/infrastructure/storage"
	"bate-papo/observability"
	"bate-papo/runtime"

	"github.com/benbjohnson/clock"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const livenessTimeout = 10 * time.Second

type chatServer struct {
	mockedRouter
	clock  *clock.Mock
	engine *runtime.Engine
}

// newChatServer wires the real engine over an in-memory badger behind the router.
func newChatServer(t *testing.T) chatServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	metrics := observability.NewMetrics()
	engine := runtime.NewEngine(log, mock,
		storage.NewParticipantRepository(db, log),
		storage.NewMessageRepository(db, log),
		nil, metrics,
		runtime.EngineConfig{
			StoreTimeout:    time.Second,
			SweepInterval:   15 * time.Second,
			LivenessTimeout: livenessTimeout,
		})
	router := NewRouter(RouterConfig{
		Log:      log,
		Clock:    mock,
		Registry: engine.Registry,
		Bus:      engine.Bus,
		Metrics:  metrics,
	})
	return chatServer{mockedRouter: mockedRouter{router: router}, clock: mock, engine: engine}
}

func (s chatServer) messages(t *testing.T, user string) []MessageResponse {
	t.Helper()
	w := s.do(http.MethodGet, "/messages", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decode[[]MessageResponse](t, w)
}

func (s chatServer) participants(t *testing.T) []string {
	t.Helper()
	w := s.do(http.MethodGet, "/participants", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	return lo.Map(decode[[]ParticipantResponse](t, w), func(p ParticipantResponse, _ int) string { return p.Name })
}

func TestScenario_Join_Twice(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)

	// When Alice joins
	w := s.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"})

	// Then she is registered and announced
	req.Equal(http.StatusCreated, w.Code)
	req.Equal([]string{"Alice"}, s.participants(t))
	log := s.messages(t, "")
	req.Len(log, 1)
	req.Equal("Alice", log[0].From)
	req.Equal("all", log[0].To)
	req.Equal("status", log[0].Type)
	req.Equal("09:00:00", log[0].Time)

	// When she joins again
	w = s.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"})

	// Then the name is taken and the log is unchanged
	req.Equal(http.StatusConflict, w.Code)
	req.Len(s.messages(t, ""), 1)
}

func TestScenario_Blank_Name(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)

	w := s.do(http.MethodPost, "/participants", "", gin.H{"name": "   "})

	req.Equal(http.StatusUnprocessableEntity, w.Code)
	req.Empty(s.participants(t))
}

func TestScenario_Post_Requires_Live_Author(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)
	req.Equal(http.StatusCreated, s.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)
	hi := gin.H{"to": "all", "text": "hi", "type": "message"}

	// When Alice posts
	w := s.do(http.MethodPost, "/messages", "Alice", hi)
	req.Equal(http.StatusCreated, w.Code)
	req.Equal("hi", decode[MessageResponse](t, w).Text)

	// And Bob, unregistered, posts the same
	w = s.do(http.MethodPost, "/messages", "Bob", hi)
	req.Equal(http.StatusUnprocessableEntity, w.Code)
}

func TestScenario_Private_Message(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		req.Equal(http.StatusCreated, s.do(http.MethodPost, "/participants", "", gin.H{"name": name}).Code)
	}

	// Given Alice whispers to Bob
	w := s.do(http.MethodPost, "/messages", "Alice", gin.H{"to": "Bob", "text": "psst", "type": "private_message"})
	req.Equal(http.StatusCreated, w.Code)

	texts := func(user string) []string {
		return lo.Map(s.messages(t, user), func(m MessageResponse, _ int) string { return m.Text })
	}

	// Then Carol does not see it, Bob does
	req.NotContains(texts("Carol"), "psst")
	req.Contains(texts("Bob"), "psst")
	req.Contains(texts("Alice"), "psst")
}

func TestScenario_Author_Only_Mutation(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)
	for _, name := range []string{"Alice", "Bob"} {
		req.Equal(http.StatusCreated, s.do(http.MethodPost, "/participants", "", gin.H{"name": name}).Code)
	}
	w := s.do(http.MethodPost, "/messages", "Alice", gin.H{"to": "all", "text": "mine", "type": "message"})
	req.Equal(http.StatusCreated, w.Code)
	id := decode[MessageResponse](t, w).ID

	// When Bob meddles
	req.Equal(http.StatusUnauthorized, s.do(http.MethodPut, "/messages/"+id, "Bob", gin.H{"to": "all", "text": "bob's", "type": "message"}).Code)
	req.Equal(http.StatusUnauthorized, s.do(http.MethodDelete, "/messages/"+id, "Bob", nil).Code)

	// Then nothing changed
	last := lo.LastOrEmpty(s.messages(t, "Bob"))
	req.Equal("mine", last.Text)

	// When Alice edits then deletes it
	w = s.do(http.MethodPut, "/messages/"+id, "Alice", gin.H{"to": "all", "text": "ours", "type": "message"})
	req.Equal(http.StatusOK, w.Code)
	req.Equal("ours", decode[MessageResponse](t, w).Text)
	req.Equal(http.StatusOK, s.do(http.MethodDelete, "/messages/"+id, "Alice", nil).Code)

	// Then it is gone
	req.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/messages/"+id, "Alice", nil).Code)
}

func TestScenario_Silent_Participant_Leaves(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)
	req.Equal(http.StatusCreated, s.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)
	req.Equal(http.StatusCreated, s.do(http.MethodPost, "/participants", "", gin.H{"name": "Bob"}).Code)

	// Given Bob keeps his status fresh and Alice does not
	s.clock.Add(8 * time.Second)
	req.Equal(http.StatusOK, s.do(http.MethodPost, "/status", "Bob", nil).Code)
	s.clock.Add(8 * time.Second)

	// When the sweeper ticks
	_, err := s.engine.Sweep(context.Background())
	req.NoError(err)

	// Then Alice is gone with a departure notice
	req.Equal([]string{"Bob"}, s.participants(t))
	last := lo.LastOrEmpty(s.messages(t, "Bob"))
	req.Equal("Alice", last.From)
	req.Equal("status", last.Type)
	req.Equal("Alice sai da sala...", last.Text)
	req.Equal(http.StatusNotFound, s.do(http.MethodPost, "/status", "Alice", nil).Code)
}

func TestScenario_Limit_Counts_Visible_Messages(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		req.Equal(http.StatusCreated, s.do(http.MethodPost, "/participants", "", gin.H{"name": name}).Code)
	}
	req.Equal(http.StatusCreated, s.do(http.MethodPost, "/messages", "Carol", gin.H{"to": "all", "text": "visible", "type": "message"}).Code)
	req.Equal(http.StatusCreated, s.do(http.MethodPost, "/messages", "Alice", gin.H{"to": "Bob", "text": "hidden", "type": "private_message"}).Code)

	w := s.do(http.MethodGet, "/messages?limit=1", "Carol", nil)

	req.Equal(http.StatusOK, w.Code)
	req.Equal("visible", decode[[]MessageResponse](t, w)[0].Text)
}

func TestScenario_Metrics_Exposed(t *testing.T) {
	req := require.New(t)
	s := newChatServer(t)
	req.Equal(http.StatusCreated, s.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)

	w := s.do(http.MethodGet, "/metrics", "", nil)

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "chat_participants_joined_total 1")
	req.Contains(w.Body.String(), `chat_http_requests_total{code="201",route="POST /participants"} 1`)
}
