// Package server exposes a generated map over HTTP: grid cells as
// JSON and a rendered PNG. It replaces a desktop repaint loop with a
// browser one; clients poll, the owner swaps grids in.
package server

import (
	"encoding/json"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gridworks/mapgen/internal/grid"
)

// Server serves the current grid. The grid is held behind an atomic
// pointer so a regeneration goroutine can swap in a fresh one while
// requests are in flight.
type Server struct {
	current   atomic.Pointer[grid.Grid]
	colors    map[string]color.NRGBA
	cellW     int
	cellH     int
	startTime time.Time
	log       *slog.Logger
}

// New creates a server rendering cells at cellW×cellH pixels with the
// given display colors. Nil colors fall back to the stock palette.
func New(colors map[string]color.NRGBA, cellW, cellH int, log *slog.Logger) *Server {
	if colors == nil {
		colors = grid.DefaultColors()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		colors:    colors,
		cellW:     cellW,
		cellH:     cellH,
		startTime: time.Now(),
		log:       log,
	}
}

// SetGrid publishes g as the grid served from now on.
func (s *Server) SetGrid(g *grid.Grid) {
	s.current.Store(g)
}

// Router builds the chi router with all endpoints mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)
	r.Get("/grid", s.handleGrid)
	r.Get("/map.png", s.handleMapPNG)
	return r
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int    `json:"uptime_seconds"`
	HasGrid       bool   `json:"has_grid"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int(time.Since(s.startTime).Seconds()),
		HasGrid:       s.current.Load() != nil,
	})
}

type gridCell struct {
	grid.Location
	Name string `json:"name"`
}

type gridResponse struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  []gridCell `json:"cells"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g := s.current.Load()
	if g == nil {
		http.Error(w, "no grid generated yet", http.StatusServiceUnavailable)
		return
	}

	resp := gridResponse{
		Width:  g.Width,
		Height: g.Height,
		Cells:  make([]gridCell, 0, g.Width*g.Height),
	}
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			if tile, ok := g.TileAt(x, y); ok {
				resp.Cells = append(resp.Cells, gridCell{
					Location: grid.Location{X: x, Y: y},
					Name:     tile.Name,
				})
			}
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMapPNG(w http.ResponseWriter, r *http.Request) {
	g := s.current.Load()
	if g == nil {
		http.Error(w, "no grid generated yet", http.StatusServiceUnavailable)
		return
	}

	img := g.Render(s.cellW, s.cellH, s.colors)
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.Error("encoding map image", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", "error", err)
	}
}
