// internal/playground/server.go
package playground

import (
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pseudo/internal/bridge"
	"pseudo/internal/runtime"
)

// Server exposes the buffered interpreter over one websocket per session, so
// a browser editor can load programs, stream output and feed citeste without
// ever blocking the page.
type Server struct {
	Addr     string
	Upgrader websocket.Upgrader
}

func NewServer(addr string) *Server {
	return &Server{
		Addr: addr,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The playground is a local tool; any page may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Message is the wire format in both directions.
type Message struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Line  uint32 `json:"line,omitempty"`
}

// session drives one interpreter instance for one connection. All calls run
// on the connection's read loop, which keeps the runtime single-threaded.
type session struct {
	id   string
	conn *websocket.Conn
	inst *bridge.Instance
}

func (s *session) send(msg Message) error {
	return s.conn.WriteJSON(msg)
}

// flushOutput forwards every queued output chunk to the client.
func (s *session) flushOutput() error {
	for {
		chunk, ok := s.inst.PopOutput()
		if !ok {
			return nil
		}
		if err := s.send(Message{Type: "output", Value: chunk}); err != nil {
			return err
		}
	}
}

// advance runs until the program suspends, finishes or fails, then reports
// output and state.
func (s *session) advance() error {
	state := s.inst.Run()
	if err := s.flushOutput(); err != nil {
		return err
	}

	switch state {
	case runtime.StateNeedsInput:
		return s.send(Message{Type: "state", Value: "needs_input", Line: s.inst.GetLine()})
	case runtime.StateError:
		if err := s.send(Message{Type: "error", Value: s.inst.GetError(), Line: s.inst.GetLine()}); err != nil {
			return err
		}
		return s.send(Message{Type: "state", Value: "error"})
	default:
		return s.send(Message{Type: "state", Value: "done"})
	}
}

func (s *session) handle(msg Message) error {
	switch msg.Type {
	case "load":
		if !s.inst.Load(msg.Value) {
			if err := s.send(Message{Type: "error", Value: s.inst.GetError()}); err != nil {
				return err
			}
			return s.send(Message{Type: "state", Value: "error"})
		}
		return s.advance()

	case "input":
		s.inst.PushInput(msg.Value)
		return s.advance()

	case "stop":
		s.inst.RequestStop()
		return s.send(Message{Type: "state", Value: "stopped"})

	case "reset":
		s.inst.Reset()
		return s.send(Message{Type: "state", Value: "reset"})
	}

	return s.send(Message{Type: "error", Value: fmt.Sprintf("mesaj necunoscut: %s", msg.Type)})
}

// HandleWS upgrades one connection and runs its session loop.
func (srv *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("playground: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s := &session{
		id:   uuid.NewString(),
		conn: conn,
		inst: bridge.NewInstance(),
	}
	log.Printf("playground: session %s connected from %s", s.id, r.RemoteAddr)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("playground: session %s: %v", s.id, err)
			}
			return
		}
		if err := s.handle(msg); err != nil {
			log.Printf("playground: session %s write failed: %v", s.id, err)
			return
		}
	}
}

// Handler builds the playground routes.
func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleWS)
	return mux
}

// ListenAndServe blocks serving the playground on srv.Addr.
func (srv *Server) ListenAndServe() error {
	log.Printf("playground: listening on %s", srv.Addr)
	return http.ListenAndServe(srv.Addr, srv.Handler())
}
