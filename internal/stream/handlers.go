package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the websocket feed. `/ws` subscribes to every
// topic; `/ws/:topic` narrows to one. The welcome provider supplies the
// initial frames (current session state, track layout) sent to each new
// subscriber.
func RegisterRoutes(r fiber.Router, hub *Hub, welcome func() [][]byte) {
	handler := func(c *websocket.Conn) {
		client := hub.Register(c.Params("topic"))

		if welcome != nil {
			for _, frame := range welcome() {
				if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
					hub.Unregister(client)
					return
				}
			}
		}

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		// Unregister closes Send, which ends the writer goroutine.
		hub.Unregister(client)
		<-done
	}

	r.Get("/ws", websocket.New(handler))
	r.Get("/ws/:topic", websocket.New(handler))
}
