package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebServer provides HTTP endpoints for health checking, the current
// briefing, and a WebSocket push channel for dashboard clients.
type WebServer struct {
	planner   *Planner
	server    *http.Server
	port      int
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map
	broadcast chan []byte
	done      chan struct{}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Planner   PlannerHealth `json:"planner"`
	System    SystemHealth  `json:"system"`
}

// PlannerHealth represents planner-specific health information.
type PlannerHealth struct {
	IsRunning       bool       `json:"is_running"`
	MissionName     string     `json:"mission_name"`
	HasForecast     bool       `json:"has_forecast"`
	LastUpdate      *time.Time `json:"last_update,omitempty"`
	RefreshInterval string     `json:"refresh_interval"`
}

// SystemHealth represents system-level health information.
type SystemHealth struct {
	Uptime string `json:"uptime"`
}

// NewWebServer creates a new web server with the dashboard endpoints.
func NewWebServer(planner *Planner, port int) *WebServer {
	if port <= 0 {
		return nil // Server disabled
	}

	mux := http.NewServeMux()
	ws := &WebServer{
		planner:   planner,
		port:      port,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	mux.HandleFunc("/api/health", ws.healthHandler)
	mux.HandleFunc("/api/ready", ws.readinessHandler)
	mux.HandleFunc("/api/status", ws.statusHandler)
	mux.HandleFunc("/api/report", ws.reportHandler)
	mux.HandleFunc("/api/ws", ws.wsHandler)

	fs := http.FileServer(http.Dir("./web/dist"))
	mux.Handle("/", fs)

	return ws
}

// Start starts the web server.
func (ws *WebServer) Start() error {
	if ws == nil {
		return nil // Server disabled
	}

	go ws.handleBroadcasts()

	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.planner.logger.Printf("Web server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the web server.
func (ws *WebServer) Stop(ctx context.Context) error {
	if ws == nil {
		return nil // Server disabled
	}

	close(ws.done)

	ws.clients.Range(func(key, value any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})

	return ws.server.Shutdown(ctx)
}

// QueueReport pushes a fresh briefing to all connected dashboard clients.
func (ws *WebServer) QueueReport(v any) {
	if ws == nil {
		return
	}

	message, err := json.Marshal(v)
	if err != nil {
		ws.planner.logger.Printf("Failed to encode briefing for broadcast: %v", err)
		return
	}

	select {
	case ws.broadcast <- message:
	default:
		// Broadcast queue full, drop the update; the next refresh replaces it
	}
}

// healthHandler handles the /api/health endpoint.
func (ws *WebServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := ws.planner.GetStatus()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "0.2.0",
		Planner: PlannerHealth{
			IsRunning:       status.IsRunning,
			MissionName:     status.MissionName,
			HasForecast:     status.HasForecast,
			LastUpdate:      status.LastUpdate,
			RefreshInterval: ws.planner.GetConfig().RefreshInterval.String(),
		},
		System: SystemHealth{
			Uptime: formatUptime(time.Since(ws.startTime)),
		},
	}

	if !status.IsRunning {
		health.Status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// readinessHandler handles the /api/ready endpoint. The planner is ready
// once it has produced a briefing.
func (ws *WebServer) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := ws.planner.GetStatus()
	isReady := status.IsRunning && status.HasForecast

	ready := map[string]any{
		"ready":     isReady,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")

	if !isReady {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(ready); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statusHandler handles the /api/status endpoint (summary status).
func (ws *WebServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := ws.planner.GetStatus()

	response := map[string]any{
		"planner_status": status,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if rep := ws.planner.GetReport(); rep != nil {
		response["briefing"] = map[string]any{
			"id":            rep.ID,
			"generated_at":  rep.GeneratedAt,
			"flight_status": rep.Status,
			"risk_level":    rep.Plan.Summary.RiskLevel,
			"time_windows":  rep.Windows,
			"departure":     rep.Departure,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// reportHandler handles the /api/report endpoint (full briefing).
func (ws *WebServer) reportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rep := ws.planner.GetReport()
	if rep == nil {
		http.Error(w, "No briefing available yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// wsHandler handles WebSocket connections.
func (ws *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.planner.logger.Printf("WebSocket upgrade error: %v", err)
		return
	}

	ws.clients.Store(conn, true)
	ws.planner.logger.Printf("New WebSocket client connected. Total clients: %d", ws.clientCount())

	// Send the current briefing immediately
	if rep := ws.planner.GetReport(); rep != nil {
		if message, err := json.Marshal(rep); err == nil {
			_ = conn.WriteMessage(websocket.TextMessage, message)
		}
	}

	defer func() {
		ws.clients.Delete(conn)
		conn.Close()
		ws.planner.logger.Printf("WebSocket client disconnected. Total clients: %d", ws.clientCount())
	}()

	// Read messages from client (ping/pong, close)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ws.planner.logger.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (ws *WebServer) clientCount() int {
	count := 0
	ws.clients.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// handleBroadcasts sends queued messages to all connected clients.
func (ws *WebServer) handleBroadcasts() {
	for {
		select {
		case message := <-ws.broadcast:
			ws.clients.Range(func(key, value any) bool {
				conn, ok := key.(*websocket.Conn)
				if !ok {
					return true
				}

				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					ws.planner.logger.Printf("WebSocket write error: %v", err)
					conn.Close()
					ws.clients.Delete(conn)
				}
				return true
			})
		case <-ws.done:
			return
		}
	}
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
