package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"codesync/internal/models"
)

type frameCapture struct {
	frames []models.WSFrame
}

func newFrameCapture() *frameCapture { return &frameCapture{} }

func (c *frameCapture) hook(frame models.WSFrame) { c.frames = append(c.frames, frame) }

func (c *frameCapture) list() []models.WSFrame {
	out := make([]models.WSFrame, len(c.frames))
	copy(out, c.frames)
	return out
}

func hookedClient(id string) (*Client, *frameCapture) {
	c := NewClient(id, nil)
	capture := newFrameCapture()
	c.SetSendHook(capture.hook)
	return c, capture
}

func TestClientSendWithHook(t *testing.T) {
	client, capture := hookedClient("c1")
	client.Send(models.WSFrame{Type: "ping"})

	got := capture.list()
	if len(got) != 1 || got[0].Type != "ping" {
		t.Fatalf("expected frame captured, got %#v", got)
	}
}

func TestClientSendWithoutConnDoesNotPanic(t *testing.T) {
	client := NewClient("c1", nil)
	client.Send(models.WSFrame{Type: "noop"})
}

func TestClientSendWritesToConn(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan models.WSFrame, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err == nil {
			received <- frame
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	client := NewClient("c1", conn)
	client.Send(models.WSFrame{Type: "ping"})

	select {
	case frame := <-received:
		if frame.Type != "ping" {
			t.Fatalf("unexpected frame: %#v", frame)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected frame to be received")
	}
}

func TestHubRegisterAndLookup(t *testing.T) {
	hub := NewHub()
	c, _ := hookedClient("c1")
	hub.Register(c)

	if hub.Len() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.Len())
	}
	got, ok := hub.Client("c1")
	if !ok || got != c {
		t.Fatalf("expected registered client back")
	}
	if _, ok := hub.Client("missing"); ok {
		t.Fatalf("expected missing client")
	}

	hub.Unregister("c1")
	if hub.Len() != 0 {
		t.Fatalf("expected empty hub, got %d", hub.Len())
	}
}

func TestEmitToConnection(t *testing.T) {
	hub := NewHub()
	c1, cap1 := hookedClient("c1")
	c2, cap2 := hookedClient("c2")
	hub.Register(c1)
	hub.Register(c2)

	hub.EmitToConnection("c2", models.WSFrame{Type: "direct"})

	if len(cap1.list()) != 0 {
		t.Fatalf("c1 should not receive a unicast to c2")
	}
	if got := cap2.list(); len(got) != 1 || got[0].Type != "direct" {
		t.Fatalf("c2 missing unicast frame: %#v", got)
	}

	// unknown target is dropped silently
	hub.EmitToConnection("ghost", models.WSFrame{Type: "direct"})
}

func TestEmitToGroupExcludingSkipsSender(t *testing.T) {
	hub := NewHub()
	sender, _ := hookedClient("sender")
	sender.SetSendHook(func(models.WSFrame) { t.Fatal("sender should not receive its own broadcast") })
	c1, cap1 := hookedClient("c1")
	c2, cap2 := hookedClient("c2")
	outsider, capOut := hookedClient("outsider")

	for _, c := range []*Client{sender, c1, c2, outsider} {
		hub.Register(c)
	}
	hub.JoinGroup("sender", "r1")
	hub.JoinGroup("c1", "r1")
	hub.JoinGroup("c2", "r1")
	hub.JoinGroup("outsider", "r2")

	hub.EmitToGroupExcluding("r1", "sender", models.WSFrame{Type: "chat"})

	if got := cap1.list(); len(got) != 1 || got[0].Type != "chat" {
		t.Fatalf("c1 missing frame: %#v", got)
	}
	if got := cap2.list(); len(got) != 1 || got[0].Type != "chat" {
		t.Fatalf("c2 missing frame: %#v", got)
	}
	if len(capOut.list()) != 0 {
		t.Fatalf("other room must not receive the frame")
	}
}

func TestLeaveGroupStopsDelivery(t *testing.T) {
	hub := NewHub()
	c1, cap1 := hookedClient("c1")
	hub.Register(c1)
	hub.JoinGroup("c1", "r1")
	hub.LeaveGroup("c1", "r1")

	hub.EmitToGroupExcluding("r1", "", models.WSFrame{Type: "chat"})
	if len(cap1.list()) != 0 {
		t.Fatalf("left client should not receive frames")
	}

	// leaving an unknown group is a no-op
	hub.LeaveGroup("c1", "nope")
}

func TestUnregisterDropsGroupMembership(t *testing.T) {
	hub := NewHub()
	c1, cap1 := hookedClient("c1")
	hub.Register(c1)
	hub.JoinGroup("c1", "r1")

	hub.Unregister("c1")
	hub.EmitToGroupExcluding("r1", "", models.WSFrame{Type: "chat"})
	if len(cap1.list()) != 0 {
		t.Fatalf("unregistered client should not receive frames")
	}
}

func TestJoinGroupUnknownConnectionIsNoop(t *testing.T) {
	hub := NewHub()
	hub.JoinGroup("ghost", "r1")
	hub.EmitToGroupExcluding("r1", "", models.WSFrame{Type: "chat"})
}
