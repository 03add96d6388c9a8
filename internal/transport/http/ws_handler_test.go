package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bonitx-quiz-service/internal/app"
	"bonitx-quiz-service/internal/domain"
	"bonitx-quiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

type wireMessage struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func TestWebSocketQuizFlow(t *testing.T) {
	leads := memory.NewLeadStore()
	server := newTestServer(t, leads)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	readUntil(t, conn, func(m wireMessage) bool {
		return m.Type == "state" && m.Payload["ready"] == true && stageKind(m) == "intro"
	})

	send(t, conn, "advance", nil)
	readUntil(t, conn, func(m wireMessage) bool { return stageKind(m) == "question" })

	// Advancing without a selection is rejected with the user-facing message.
	send(t, conn, "advance", nil)
	errMsg := readUntil(t, conn, func(m wireMessage) bool { return m.Type == "error" })
	if errMsg.Payload["code"] != "selection_required" || errMsg.Payload["message"] != domain.MessageSelectionRequired {
		t.Fatalf("unexpected error payload %+v", errMsg.Payload)
	}

	for id := 1; id <= 5; id++ {
		send(t, conn, "select", map[string]any{"questionId": id, "category": "C"})
		send(t, conn, "advance", nil)
	}
	readUntil(t, conn, func(m wireMessage) bool { return stageKind(m) == "email" })

	send(t, conn, "submit", map[string]any{"email": "abc"})
	errMsg = readUntil(t, conn, func(m wireMessage) bool { return m.Type == "error" })
	if errMsg.Payload["code"] != "invalid_email" {
		t.Fatalf("expected invalid_email, got %+v", errMsg.Payload)
	}

	send(t, conn, "submit", map[string]any{"email": "a@b.com"})
	final := readUntil(t, conn, func(m wireMessage) bool { return stageKind(m) == "results" })
	result, _ := final.Payload["result"].(map[string]any)
	if result["mode"] != string(domain.ModeConexion) {
		t.Fatalf("expected Modo Conexión result, got %+v", result)
	}

	records := leads.Records(domain.CollectionPath("ws-tenant"))
	if len(records) != 1 || records[0].Email != "a@b.com" {
		t.Fatalf("expected one stored lead, got %+v", records)
	}
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	server := newTestServer(t, memory.NewLeadStore())
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	send(t, conn, "dance", nil)
	msg := readUntil(t, conn, func(m wireMessage) bool { return m.Type == "error" })
	if msg.Payload["code"] != "unsupported" {
		t.Fatalf("expected unsupported, got %+v", msg.Payload)
	}

	send(t, conn, "select", map[string]any{"questionId": 1, "category": "Z"})
	msg = readUntil(t, conn, func(m wireMessage) bool { return m.Type == "error" })
	if msg.Payload["code"] != "invalid_category" {
		t.Fatalf("expected invalid_category, got %+v", msg.Payload)
	}
}

func TestWebSocketSubmitRejectsMalformedPayload(t *testing.T) {
	leads := memory.NewLeadStore()
	server := newTestServer(t, leads)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	send(t, conn, "email", map[string]any{"email": "ana@example.com"})
	readUntil(t, conn, func(m wireMessage) bool { return m.Type == "state" && m.Payload["email"] == "ana@example.com" })

	send(t, conn, "submit", map[string]any{"email": 42})
	msg := readUntil(t, conn, func(m wireMessage) bool { return m.Type == "error" })
	if msg.Payload["code"] != "invalid_email" {
		t.Fatalf("expected invalid_email, got %+v", msg.Payload)
	}
	if got := leads.Records(domain.CollectionPath("ws-tenant")); len(got) != 0 {
		t.Fatalf("expected no stored leads, got %+v", got)
	}
}

func TestEnqueueStopsWhenWriterExited(t *testing.T) {
	send := make(chan outboundMessage[any], 1)
	writerDone := make(chan struct{})

	if !enqueue(send, writerDone, outboundMessage[any]{Type: "state"}) {
		t.Fatal("expected first message to be queued")
	}
	close(writerDone)

	result := make(chan bool, 1)
	go func() { result <- enqueue(send, writerDone, errorMessage(domain.ErrInvalidEmail)) }()
	select {
	case ok := <-result:
		if ok {
			t.Fatal("expected enqueue to report the exited writer")
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue after the writer exited")
	}
}

func newTestServer(t *testing.T, leads app.LeadStore) *httptest.Server {
	t.Helper()
	repo := memory.NewQuestionRepository(memory.DefaultBankLoader(), time.Minute)
	service := app.NewQuizService(
		memory.NewSessionStore(),
		repo,
		memory.NewAnonymousIdentity(),
		app.NewGateway(leads, "ws-tenant", nil),
		app.Options{},
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service, nil).ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil reads messages until match accepts one, failing after 5 seconds.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wireMessage) bool) wireMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func stageKind(m wireMessage) string {
	if m.Type != "state" {
		return ""
	}
	stage, _ := m.Payload["stage"].(map[string]any)
	kind, _ := stage["kind"].(string)
	return kind
}
