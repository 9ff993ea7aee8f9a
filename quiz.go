// Quizduel game hub
//
// One process hosts exactly one room. The host publishes a question
// along with its accepted answer; the question (never the answer) is
// broadcast to every connected client. Students reply with free text,
// and the first submission whose normalized form matches the accepted
// answer ends the round and is announced to everyone. The host can also
// reset the room, clearing the current question entirely.
//
// Features:
// - WebSockets at /ws, one goroutine per direction per client
// - All game state owned by a single hub goroutine fed over channels,
//   so answer evaluation is serialized and each round has one winner
// - Host role granted by admin token, or by the reserved display name
//   when no token is configured
// - Mismatched answers get no feedback; losers learn the outcome from
//   the winner broadcast
// - In-browser QR button to share the room URL, backed by go-qrcode

package main

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "participant:connected", "question:new", "answer:submitted", "game:reset"
	Name     string `json:"name,omitempty"`     // participant:connected
	Question string `json:"question,omitempty"` // question:new
	Answer   string `json:"answer,omitempty"`   // question:new / answer:submitted
}

// RosterMessage announces a participant joining or leaving, with the
// updated headcount.
type RosterMessage struct {
	Type           string `json:"type"` // "participant:joined" or "participant:left"
	Name           string `json:"name"`
	TotalConnected int    `json:"totalConnected"`
}

// QuestionMessage carries a newly published question. The accepted
// answer is deliberately absent.
type QuestionMessage struct {
	Type     string `json:"type"` // "question:published"
	Question string `json:"question"`
}

// RoundEndedMessage names the winner and reveals the accepted answer in
// normalized form.
type RoundEndedMessage struct {
	Type          string `json:"type"` // "round:ended"
	Winner        string `json:"winner"`
	CorrectAnswer string `json:"correctAnswer"`
}

// ResetMessage tells clients to clear their round UI.
type ResetMessage struct {
	Type string `json:"type"` // "game:wasReset"
}

type Client struct {
	conn    *websocket.Conn
	send    chan any
	connID  string
	tokenOK bool // presented a matching admin token at upgrade
}

type clientEvent struct {
	client *Client
	msg    ClientMessage
}

// roomView is a read-only snapshot of hub state, answered over a
// channel so tests can observe the room without racing the run loop.
type roomView struct {
	clients      int
	participants int
	roundActive  bool
	accepted     string
}

type Hub struct {
	cfg      *Config
	registry *Registry
	round    *Round
	clients  map[*Client]bool

	register chan *Client
	unreg    chan *Client
	events   chan clientEvent
	views    chan chan roomView
}

func newHub(cfg *Config) *Hub {
	return &Hub{
		cfg:      cfg,
		registry: newRegistry(),
		round:    newRound(),
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		events:   make(chan clientEvent),
		views:    make(chan chan roomView),
	}
}

// run drains every channel from a single goroutine. Nothing else may
// touch registry, round, or the clients set.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

			if p, ok := h.registry.unregister(c.connID); ok {
				logf(h.cfg, "QUIZ: %q disconnected (%d connected)", p.Name, h.registry.count())
				h.broadcast(RosterMessage{
					Type:           "participant:left",
					Name:           p.Name,
					TotalConnected: h.registry.count(),
				})
			}

		case ev := <-h.events:
			switch ev.msg.Type {
			case "participant:connected":
				h.handleAnnounce(ev)
			case "question:new":
				h.handlePublish(ev)
			case "answer:submitted":
				h.handleAnswer(ev)
			case "game:reset":
				h.handleReset(ev)
			}

		case reply := <-h.views:
			reply <- roomView{
				clients:      len(h.clients),
				participants: h.registry.count(),
				roundActive:  h.round.isActive(),
				accepted:     h.round.answer(),
			}
		}
	}
}

// view blocks until the run loop answers with a state snapshot.
func (h *Hub) view() roomView {
	reply := make(chan roomView, 1)
	h.views <- reply
	return <-reply
}

// hostRole decides the submitted name's role at registration time. With
// an admin token configured the reserved-name rule is disabled entirely;
// anyone can still claim the name, but it grants nothing.
func (h *Hub) hostRole(c *Client, name string) Role {
	if h.cfg.adminToken != "" {
		if c.tokenOK {
			return RoleHost
		}
		return RolePlayer
	}

	if isPrivileged(name) {
		return RoleHost
	}
	return RolePlayer
}

func (h *Hub) handleAnnounce(ev clientEvent) {
	name := strings.TrimSpace(ev.msg.Name)
	if name == "" {
		logf(h.cfg, "QUIZ: Dropped announcement with empty name from %s", ev.client.connID)
		return
	}

	role := h.hostRole(ev.client, name)
	h.registry.register(ev.client.connID, name, role)

	logf(h.cfg, "QUIZ: %q connected (%d connected)", name, h.registry.count())

	h.broadcast(RosterMessage{
		Type:           "participant:joined",
		Name:           name,
		TotalConnected: h.registry.count(),
	})
}

func (h *Hub) handlePublish(ev clientEvent) {
	if !h.round.publish(ev.msg.Question, ev.msg.Answer) {
		logf(h.cfg, "QUIZ: Rejected question with empty fields from %s", ev.client.connID)
		return
	}

	logf(h.cfg, "QUIZ: New question published: %q", ev.msg.Question)

	h.broadcast(QuestionMessage{
		Type:     "question:published",
		Question: ev.msg.Question,
	})
}

func (h *Hub) handleAnswer(ev clientEvent) {
	p, ok := h.registry.lookup(ev.client.connID)
	if !ok {
		logf(h.cfg, "QUIZ: Unidentified connection %s tried to answer", ev.client.connID)
		return
	}

	if strings.TrimSpace(ev.msg.Answer) == "" {
		return
	}

	switch h.round.submit(ev.msg.Answer) {
	case submitWon:
		logf(h.cfg, "QUIZ: %q won the round with %q", p.Name, h.round.answer())
		h.broadcast(RoundEndedMessage{
			Type:          "round:ended",
			Winner:        p.Name,
			CorrectAnswer: h.round.answer(),
		})

	case submitStale:
		logf(h.cfg, "QUIZ: Dropped late answer from %q", p.Name)

	case submitIncorrect:
		// No feedback at all; the submitter learns the outcome from the
		// eventual winner broadcast.
	}
}

func (h *Hub) handleReset(ev clientEvent) {
	p, ok := h.registry.lookup(ev.client.connID)
	if !ok || p.Role != RoleHost {
		logf(h.cfg, "QUIZ: Ignored reset from unauthorized connection %s", ev.client.connID)
		return
	}

	h.round.reset()

	logf(h.cfg, "QUIZ: Game reset by %q", p.Name)

	h.broadcast(ResetMessage{Type: "game:wasReset"})
}

// broadcast queues msg for every connected client, announced or not.
// Clients too slow to drain their send buffer are dropped.
func (h *Hub) broadcast(msg any) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		tokenOK := cfg.adminToken != "" && r.URL.Query().Get("token") == cfg.adminToken

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade failed for %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:    conn,
			send:    make(chan any, 8),
			connID:  uuid.NewString(),
			tokenOK: tokenOK,
		}

		h.register <- client

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "participant:connected", "question:new", "answer:submitted", "game:reset":
			h.events <- clientEvent{
				client: c,
				msg:    msg,
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the room URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /qr; strip the trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")
	if path == "" {
		path = "/"
	}

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerQuizGame sets up the game routes:
//   - /        → HTML client
//   - /ws      → the room websocket
//   - /qr      → PNG QR code for the room URL
func registerQuizGame(cfg *Config, mux *httprouter.Router) *Hub {
	h := newHub(cfg)
	go h.run()

	mux.GET(cfg.prefix+"/", serveHomePage(cfg))

	mux.GET(cfg.prefix+"/assets/quiz/app.css", getCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/quiz/app.js", getJsHandler(cfg))

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, h))

	mux.GET(cfg.prefix+"/qr", qrHandler)

	return h
}
