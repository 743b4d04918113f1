// Package ws serves the viewer protocol over websockets: each hello
// message triggers one generation and one world reply on the same
// connection.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"terraforge.dev/internal/protocol"
	"terraforge.dev/internal/terrain"
	"terraforge.dev/internal/worldgen"
)

// Generator runs one generation. Swappable for tests.
type Generator func(cfg worldgen.Config, templateText string) (*worldgen.World, error)

func generate(cfg worldgen.Config, templateText string) (*worldgen.World, error) {
	if templateText != "" {
		return worldgen.GenerateCustom(cfg, templateText)
	}
	return worldgen.Generate(cfg)
}

type Server struct {
	gen Generator
	log *log.Logger

	upgrader websocket.Upgrader

	// writeTimeout bounds one world message; large maps take a while to
	// serialize.
	writeTimeout time.Duration
	readTimeout  time.Duration
}

func NewServer(logger *log.Logger) *Server {
	s := &Server{
		gen: generate,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		writeTimeout: 30 * time.Second,
		readTimeout:  10 * time.Minute,
	}
	return s
}

// SetGenerator overrides the generation function.
func (s *Server) SetGenerator(g Generator) { s.gen = g }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.serveOne(conn, msg)
		}
	}
}

func (s *Server) serveOne(conn *websocket.Conn, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.writeError(conn, protocol.ErrBadConfig, "expected hello")
		return
	}
	if base.ProtocolVersion != protocol.Version {
		s.writeError(conn, protocol.ErrBadConfig, "unsupported protocol_version")
		return
	}

	hello := protocol.HelloMsg{Config: worldgen.Defaults()}
	if err := json.Unmarshal(msg, &hello); err != nil {
		s.writeError(conn, protocol.ErrBadConfig, err.Error())
		return
	}
	if err := hello.Config.Validate(); err != nil {
		s.writeError(conn, protocol.ErrBadConfig, err.Error())
		return
	}

	start := time.Now()
	w, err := s.gen(hello.Config, hello.TemplateText)
	if err != nil {
		var perr *terrain.ParseError
		if errors.As(err, &perr) {
			s.writeError(conn, protocol.ErrParse, perr.Error())
			return
		}
		s.writeError(conn, protocol.ErrInternal, err.Error())
		return
	}
	s.log.Printf("generated seed=%d cells=%d mode=%s in %s",
		w.Config.Seed, w.NumCells(), w.Config.Mode, time.Since(start).Round(time.Millisecond))

	if err := s.writeJSON(conn, protocol.NewWorld(w)); err != nil {
		s.log.Printf("write world: %v", err)
	}
}

func (s *Server) writeError(conn *websocket.Conn, code, message string) {
	if err := s.writeJSON(conn, protocol.NewError(code, message)); err != nil {
		s.log.Printf("write error message: %v", err)
	}
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
