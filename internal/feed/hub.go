// Package feed pushes visit outcomes to connected dashboards over websockets.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"visit_tracker/internal/models"
	"visit_tracker/internal/visits"
)

const writeWait = 5 * time.Second

// VisitUpdate is the message sent to dashboard clients.
type VisitUpdate struct {
	DriverID      string           `json:"driver_id"`
	VehicleNumber string           `json:"vehicle_number"`
	Name          string           `json:"name"`
	Kind          models.VisitKind `json:"kind"`
	VisitCount    int              `json:"visit_count"`
	Message       string           `json:"message,omitempty"`
	At            time.Time        `json:"at"`
}

// Hub fans visit updates out to every registered connection.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan VisitUpdate
	mu        sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan VisitUpdate, 100),
	}
}

// Run delivers queued updates until ctx is done, then closes all clients.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg VisitUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).
				Warn("Failed to send visit update, dropping client.")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Client registered with visit feed.")
}

func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		delete(h.clients, conn)
		logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Client unregistered from visit feed.")
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// PublishVisit implements visits.Notifier. It never blocks the request path.
func (h *Hub) PublishVisit(res visits.Result) {
	msg := VisitUpdate{
		DriverID:      res.Driver.DriverID,
		VehicleNumber: res.Driver.VehicleNumber,
		Name:          res.Driver.Name,
		Kind:          res.Kind,
		VisitCount:    res.VisitCount,
		Message:       res.Message,
		At:            time.Now().UTC(),
	}
	select {
	case h.broadcast <- msg:
	default:
		logrus.Warn("Visit broadcast channel full, dropping message.")
	}
}
