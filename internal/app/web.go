package app

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"

	"github.com/gorilla/websocket"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/relabs-tech/dualstick/internal/config"
)

//go:embed webui/index.html
var indexHTML string

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local network tool
	},
}

// RunWeb serves the monitor page and streams controller topics to it.
func RunWeb() error {
	cfg := config.Get()

	page, err := minifyPage(indexHTML)
	if err != nil {
		return err
	}
	log.Printf("web: monitor page minified %d -> %d bytes", len(indexHTML), len(page))

	mon := NewMonitor()
	h := newHub()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDWeb, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeController(client, cfg, "web", monitorHandlers(mon, h.broadcast)); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(mon, h, page))
}

func newWebMux(mon *Monitor, h *hub, page string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/calibration", func(w http.ResponseWriter, r *http.Request) {
		cal, ok := mon.Calibration()
		if !ok {
			http.Error(w, "no calibration yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, cal)
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, mon.Snapshot())
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		c := &wsClient{conn: conn, send: make(chan []byte, 256)}

		h.addWith(c, func() ([]byte, error) {
			return json.Marshal(wsMessage{Kind: "snapshot", Data: mon.Snapshot()})
		})
		go c.writePump()
		go c.readPump(h)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func minifyPage(page string) (string, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)

	out, err := m.String("text/html", page)
	if err != nil {
		return "", fmt.Errorf("web: minify monitor page: %w", err)
	}
	return out, nil
}
