package web

import (
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/andrevmm/ondeestou/internal/domain"
)

// offerResponse tells the sender what the validator decided. Rejection
// is a normal outcome, not an error.
type offerResponse struct {
	Accepted bool `json:"accepted"`
}

// handlePostPosition feeds one raw sample into the pipeline.
func (s *Server) handlePostPosition(c *fiber.Ctx) error {
	var sample domain.GeoSample
	if err := c.BodyParser(&sample); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	accepted, err := s.tracker.Offer(sample)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSample) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(offerResponse{Accepted: accepted})
}

// handleGetPosition returns the current accepted position.
func (s *Server) handleGetPosition(c *fiber.Ctx) error {
	pos, ok := s.validator.Current()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no position yet"})
	}
	return c.JSON(pos)
}

// handleGetAddress returns the current and previous resolved addresses.
func (s *Server) handleGetAddress(c *fiber.Ctx) error {
	cur, hasCur := s.cache.Current()
	if !hasCur {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no address yet"})
	}

	resp := fiber.Map{"current": cur}
	if prev, hasPrev := s.cache.Previous(); hasPrev {
		resp["previous"] = prev
	}
	return c.JSON(resp)
}

// handleGetQueue returns the pending announcements in dequeue order.
func (s *Server) handleGetQueue(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"size":  s.queue.Size(),
		"items": s.queue.Pending(),
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "clients": s.hub.clientCount()})
}

// handleEventsWS keeps one websocket client fed from the hub until the
// peer goes away.
func (s *Server) handleEventsWS(conn *websocket.Conn) {
	cl := &client{send: make(chan []byte, 64)}
	select {
	case s.hub.register <- cl:
	case <-s.hub.done:
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range cl.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Reads are discarded; the socket exists for the outbound stream.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case s.hub.unregister <- cl:
	case <-s.hub.done:
	}
	<-done
}
