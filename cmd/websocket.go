package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"socioBack/internal/models"
)

const (
	wsReadLimit     = 1 << 20
	wsReadDeadline  = 120 * time.Second
	wsWriteDeadline = 5 * time.Second
	wsPingInterval  = 15 * time.Second
)

// AttendanceFeed pushes every granted gate entry to connected front-desk
// dashboards. Clients only listen; inbound frames besides pongs are ignored.
type AttendanceFeed struct {
	clients    map[*websocket.Conn]struct{}
	broadcast  chan models.AttendanceRecord
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
}

func NewAttendanceFeed() *AttendanceFeed {
	return &AttendanceFeed{
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan models.AttendanceRecord),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// BroadcastEntry never blocks the caller; a feed with no consumers drops the
// record.
func (f *AttendanceFeed) BroadcastEntry(rec models.AttendanceRecord) {
	select {
	case f.broadcast <- rec:
	default:
	}
}

// All access to clients, and every write to a connection, happens on this
// goroutine; gorilla/websocket supports at most one concurrent writer.
func (f *AttendanceFeed) Run() {
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case conn := <-f.register:
			f.clients[conn] = struct{}{}
			log.Printf("WS attendance client connected (%d total)", len(f.clients))

		case conn := <-f.unregister:
			if _, ok := f.clients[conn]; ok {
				_ = conn.Close()
				delete(f.clients, conn)
				log.Printf("WS attendance client disconnected (%d total)", len(f.clients))
			}

		case rec := <-f.broadcast:
			for conn := range f.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
				if err := conn.WriteJSON(rec); err != nil {
					log.Printf("attendance broadcast error: %v", err)
					_ = conn.Close()
					delete(f.clients, conn)
				}
			}

		case <-ping.C:
			for conn := range f.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					_ = conn.Close()
					delete(f.clients, conn)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

func (app *application) AttendanceFeedHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	app.feed.register <- conn

	go drainMessages(app.feed, conn)
}

// drainMessages keeps the read side alive so pong frames are processed; any
// read error tears the client down.
func drainMessages(f *AttendanceFeed, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.unregister <- conn
			return
		}
	}
}
