package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit_tracker/internal/models"
	"visit_tracker/internal/visits"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn)
		defer hub.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHub_BroadcastsVisits(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishVisit(visits.Result{
		Kind:       models.VisitPaid,
		VisitCount: 0,
		Message:    visits.PayMessage,
		Driver:     models.Driver{DriverID: "DRIVER-ABC", VehicleNumber: "MH12AB1234", Name: "Ravi"},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got VisitUpdate
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, "DRIVER-ABC", got.DriverID)
	assert.Equal(t, "MH12AB1234", got.VehicleNumber)
	assert.Equal(t, models.VisitPaid, got.Kind)
	assert.Equal(t, visits.PayMessage, got.Message)
	assert.Equal(t, 0, got.VisitCount)
}

func TestHub_UnregistersClosedClients(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub() // not running: the channel fills up

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.PublishVisit(visits.Result{Kind: models.VisitIncremented, VisitCount: 1})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("PublishVisit blocked with a full channel")
	}
}
