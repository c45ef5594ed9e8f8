// Package web exposes the pipeline over HTTP: a small JSON API to push
// samples and read state, plus a websocket stream of live events for
// browser clients.
package web

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"github.com/andrevmm/ondeestou/internal/address"
	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
	"github.com/andrevmm/ondeestou/internal/position"
	"github.com/andrevmm/ondeestou/internal/speech"
	"github.com/andrevmm/ondeestou/internal/tracker"
)

// Event is one entry in the websocket stream. Type is "position",
// "address_change" or "queue"; Payload shape depends on the type.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

// Server ties the fiber app to the pipeline components.
type Server struct {
	app *fiber.App
	log *logger.Logger
	hub *hub

	tracker   *tracker.Tracker
	validator *position.Validator
	cache     *address.ChangeCache
	queue     *speech.Queue
}

// NewServer builds the HTTP surface and subscribes the event stream to
// the pipeline's notification channels.
func NewServer(tr *tracker.Tracker, v *position.Validator, c *address.ChangeCache, q *speech.Queue, log *logger.Logger) (*Server, error) {
	s := &Server{
		log:       log,
		hub:       newHub(log),
		tracker:   tr,
		validator: v,
		cache:     c,
		queue:     q,
	}

	app := fiber.New(fiber.Config{
		AppName:               "ondeestou",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Post("/positions", s.handlePostPosition)
	api.Get("/position", s.handleGetPosition)
	api.Get("/address", s.handleGetAddress)
	api.Get("/queue", s.handleGetQueue)
	api.Get("/health", s.handleHealth)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app

	if err := s.subscribePipeline(); err != nil {
		return nil, err
	}
	return s, nil
}

// subscribePipeline fans pipeline notifications into the websocket hub.
func (s *Server) subscribePipeline() error {
	if _, err := s.validator.SubscribeFunc(func(args ...any) {
		ev, ok := args[0].(domain.PositionEvent)
		if !ok {
			return
		}
		s.publish("position", ev)
	}); err != nil {
		return err
	}

	for _, f := range domain.TrackedFields {
		if err := s.cache.OnField(f, func(ch domain.FieldChange) {
			s.publish("address_change", ch)
		}); err != nil {
			return err
		}
	}

	if _, err := s.queue.SubscribeFunc(func(...any) {
		s.publish("queue", fiber.Map{"size": s.queue.Size()})
	}); err != nil {
		return err
	}
	return nil
}

func (s *Server) publish(eventType string, payload any) {
	s.hub.broadcastJSON(Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Time:    time.Now(),
		Payload: payload,
	})
}

// Listen starts the hub and serves on addr. Blocks until Shutdown.
func (s *Server) Listen(addr string) error {
	go s.hub.run()
	s.log.Info("web: listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server and the broadcast hub gracefully.
func (s *Server) Shutdown() error {
	s.hub.stop()
	return s.app.Shutdown()
}
