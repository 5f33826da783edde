package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RiccardoMarostica/Connect-4/internal/hub"
	"github.com/RiccardoMarostica/Connect-4/internal/matchmaking"
)

type waitingQueue interface {
	Enqueue(ctx context.Context, playerID string, handle matchmaking.Handle) error
	Dequeue(playerID string)
}

type eventHub interface {
	Subscribe(channel string, sub hub.Subscriber)
	Unsubscribe(channel string, sub hub.Subscriber)
	UnsubscribeAll(sub hub.Subscriber)
}

type Server struct {
	logger *slog.Logger

	queue  waitingQueue
	events eventHub

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, client *Client, message *Message) error
}

func New(logger *slog.Logger, queue waitingQueue, events eventHub) *Server {
	server := &Server{
		logger: logger,
		queue:  queue,
		events: events,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
		handlers: make(map[string]func(context.Context, *Client, *Message) error),
	}

	server.handlers[actionWaitingStatus] = server.handleWaitingStatus
	server.handlers[actionExitWaitingStatus] = server.handleExitWaitingStatus
	server.handlers[actionSubscribe] = server.handleSubscribe
	server.handlers[actionUnsubscribe] = server.handleUnsubscribe

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(that.logger, conn)

	log.Info("WebSocket connection established")

	go client.writePump()
	that.readPump(ctx, client)
}

// readPump processes messages from the client until the connection dies,
// then cleans the client out of the waiting pool and the hub.
func (that *Server) readPump(ctx context.Context, client *Client) {
	log := that.logger.With("method", "readPump")

	defer func() {
		that.disconnect(client)
		client.conn.Close()
		close(client.send)
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("no handler for action", "action", message.Action)
			continue
		}

		if err = handler(ctx, client, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// disconnect removes every trace of the client: its waiting-pool entry
// must be gone before any future pairing attempt runs.
func (that *Server) disconnect(client *Client) {
	log := that.logger.With("method", "disconnect")

	if client.playerID != "" {
		that.queue.Dequeue(client.playerID)
	}

	that.events.UnsubscribeAll(client)

	log.Info("client disconnected", "playerID", client.playerID)
}
