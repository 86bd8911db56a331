// Package server exposes the assistant over a WebSocket chat endpoint
// plus a small HTTP surface for the browser client and health checks.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"agentic-chat/internal/agent"
	"agentic-chat/internal/memory"
)

// inbound is the tagged JSON frame a client sends. Message is only set
// for chat frames.
type inbound struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Server struct {
	agent    *agent.Agent
	memory   *memory.Store
	addr     string
	server   *http.Server
	upgrader websocket.Upgrader
}

func New(a *agent.Agent, store *memory.Store, host string, port int) *Server {
	return &Server{
		agent:  a,
		memory: store,
		addr:   fmt.Sprintf("%s:%d", host, port),
		upgrader: websocket.Upgrader{
			// Single-user local deployment, the browser client is served
			// from the same process.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("🌐 Starting chat server on http://%s", s.addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"conversations": s.memory.Stats().TotalConversations,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, chatPageHTML)
}

// handleWebSocket runs the tagged-JSON exchange: chat, memory, clear
// and ping frames in; response, memory, clear, pong and error frames
// out. A malformed frame produces an error frame, never a disconnect.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("🔌 client connected: %s", r.RemoteAddr)

	s.send(conn, outbound{Type: "connection", Data: map[string]any{
		"status":  "connected",
		"message": "WebSocket connected successfully",
	}})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("🔌 client disconnected: %s", r.RemoteAddr)
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.send(conn, outbound{Type: "error", Data: map[string]any{"error": "Invalid message format"}})
			continue
		}

		switch msg.Type {
		case "chat":
			reply := s.agent.ProcessMessage(r.Context(), msg.Message)
			s.send(conn, outbound{Type: "response", Data: reply})
		case "memory":
			s.send(conn, outbound{Type: "memory", Data: s.memory.Stats()})
		case "clear":
			s.memory.Clear()
			s.send(conn, outbound{Type: "clear", Data: map[string]any{"status": "Memory cleared successfully"}})
		case "ping":
			s.send(conn, outbound{Type: "pong", Data: map[string]any{"status": "alive"}})
		default:
			s.send(conn, outbound{Type: "error", Data: map[string]any{"error": fmt.Sprintf("Unknown message type: %s", msg.Type)}})
		}
	}
}

func (s *Server) send(conn *websocket.Conn, frame outbound) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("❌ failed to write frame: %v", err)
	}
}
