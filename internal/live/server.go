package live

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/observability"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/report"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
)

// ServerConfig carries the listen address and report presentation settings.
type ServerConfig struct {
	Host  string
	Port  int
	Title string

	// Metrics, when set, is exposed at /metrics.
	Metrics http.Handler

	// Pipeline, when set, records ingestion runs and subscriber counts.
	Pipeline *observability.PipelineMetrics
}

// Server serves the interactive report, the raw chart data, a websocket feed
// of updates, and an ingestion endpoint for fresh stats snapshots.
type Server struct {
	app     *fiber.App
	cfg     ServerConfig
	channel *Channel
	logger  *slog.Logger
}

// NewServer wires the HTTP surface around a channel.
func NewServer(cfg ServerConfig, channel *Channel, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "bundle-analyzer",
			DisableStartupMessage: true,
		}),
		cfg:     cfg,
		channel: channel,
		logger:  logger,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Get("/", s.handleReport)
	s.app.Get("/data", s.handleData)
	s.app.Post("/stats", s.handleStats)
	s.app.Get("/healthz", s.handleHealth)

	s.app.Use("/ws", s.requireUpgrade)
	s.app.Get("/ws", websocket.New(s.handleSocket))

	if s.cfg.Metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.cfg.Metrics))
	}
}

// Listen blocks serving until Shutdown is called or the listener fails.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.logger.Info("live report server listening", "addr", addr)

	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return nil
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	var buf bytes.Buffer

	if err := report.RenderHTML(&buf, s.channel.Current(), s.cfg.Title); err != nil {
		s.logger.Error("report rendering failed", "error", err)

		return fiber.ErrInternalServerError
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	return c.Send(buf.Bytes())
}

func (s *Server) handleData(c *fiber.Ctx) error {
	items := s.channel.Current()
	if items == nil {
		items = []*report.ChartItem{}
	}

	return c.JSON(items)
}

// handleStats ingests a stats snapshot, reanalyzes, and broadcasts the
// result. An analysis yielding no assets keeps the previous chart data.
func (s *Server) handleStats(c *fiber.Ctx) error {
	started := time.Now()

	snapshot, err := stats.Decode(bytes.NewReader(c.Body()))
	if err != nil {
		s.logger.Warn("stats decode failed", "error", err)
		s.recordIngestion(c, "error", started)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid stats payload",
		})
	}

	applied, err := s.channel.Recompute(c.Context(), snapshot)
	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		s.recordIngestion(c, "error", started)

		return fiber.ErrInternalServerError
	}

	s.recordIngestion(c, "ok", started)

	return c.JSON(fiber.Map{
		"applied": applied,
	})
}

func (s *Server) recordIngestion(c *fiber.Ctx, status string, started time.Time) {
	if s.cfg.Pipeline == nil {
		return
	}

	s.cfg.Pipeline.RecordAnalysis(c.Context(), "ingest_stats", status, time.Since(started))
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return c.Next()
}

// handleSocket pushes the current state to a new subscriber, then relays
// every published update until the peer disconnects.
func (s *Server) handleSocket(conn *websocket.Conn) {
	connectionID := uuid.New().String()

	// Broadcasts and the initial push run on different goroutines; the
	// websocket connection allows one concurrent writer.
	var writeMu sync.Mutex

	send := func(msg Message) error {
		writeMu.Lock()
		defer writeMu.Unlock()

		return conn.WriteJSON(msg)
	}

	if current := s.channel.Current(); current != nil {
		if err := send(Message{Event: EventChartDataUpdated, Data: current}); err != nil {
			s.logger.Warn("initial state push failed", "connection", connectionID, "error", err)

			return
		}
	}

	unsubscribe := s.channel.Subscribe(connectionID, send)
	defer unsubscribe()

	if s.cfg.Pipeline != nil {
		untrack := s.cfg.Pipeline.TrackSubscriber(context.Background())
		defer untrack()
	}

	s.logger.Debug("websocket subscriber connected", "connection", connectionID)

	for {
		// Clients do not speak; reading only detects disconnects.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "connection", connectionID, "error", err)
			}

			break
		}
	}

	s.logger.Debug("websocket subscriber disconnected", "connection", connectionID)
}
