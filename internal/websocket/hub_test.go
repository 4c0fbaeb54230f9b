package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"precast-erp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

const testSecret = "ws-secret"

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, []byte(testSecret)) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-" + role, "role": role, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, res, err
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return m
}

// awaitRegistered publishes warm-up stock events until every conn has seen one.
func awaitRegistered(t *testing.T, hub *Hub, conns ...*websocket.Conn) {
	t.Helper()
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Publish(service.EventStockChanged, "warmup")
			}
		}
	}()
	defer close(stop)
	for _, conn := range conns {
		if m := read(t, conn); m.Event != service.EventStockChanged {
			t.Fatalf("warm-up event = %q", m.Event)
		}
	}
}

func TestServeWsRejectsBadTokens(t *testing.T) {
	_, srv := startHub(t)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "abc", http.StatusUnauthorized},
		{"unknown role", tokenFor(t, "visitor"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, err := dial(t, srv, tt.token)
			if err == nil {
				t.Fatal("Dial() succeeded, want rejection")
			}
			if res == nil || res.StatusCode != tt.want {
				t.Fatalf("status = %v, want %d", res, tt.want)
			}
		})
	}
}

func TestPublishFiltersByPermission(t *testing.T) {
	hub, srv := startHub(t)

	manager, _, err := dial(t, srv, tokenFor(t, "manager"))
	if err != nil {
		t.Fatalf("manager Dial() error = %v", err)
	}
	operator, _, err := dial(t, srv, tokenFor(t, "production"))
	if err != nil {
		t.Fatalf("operator Dial() error = %v", err)
	}
	awaitRegistered(t, hub, manager, operator)

	hub.Publish(service.EventOrderStatusChanged, service.StatusChange{OrderNumber: "CMD-202603-0001"})
	hub.Publish(service.EventStockChanged, "marker")

	for {
		m := read(t, manager)
		if m.Event == service.EventStockChanged && m.Data == "warmup" {
			continue
		}
		if m.Event != service.EventOrderStatusChanged {
			t.Fatalf("manager event = %q, want %q", m.Event, service.EventOrderStatusChanged)
		}
		raw, _ := json.Marshal(m.Data)
		if !strings.Contains(string(raw), "CMD-202603-0001") {
			t.Errorf("payload = %s, want the order number", raw)
		}
		break
	}

	for {
		m := read(t, operator)
		if m.Event == service.EventOrderStatusChanged {
			t.Fatal("production role received an order event")
		}
		if m.Data == "marker" {
			break
		}
	}
}

func TestPublishWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastQueue*2; i++ {
			hub.Publish(service.EventStockChanged, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}
