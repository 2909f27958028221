package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"

	"nothuman/internal/bytespool"
	"nothuman/internal/canvas"
	"nothuman/internal/game"
	"nothuman/internal/views"
)

type BoardHandler struct {
	store    *game.Store
	upgrader websocket.Upgrader
	conf     SocketConfig
}

func NewBoardHandler(store *game.Store, conf SocketConfig) *BoardHandler {
	return &BoardHandler{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  conf.ReadBufferSize,
			WriteBufferSize: conf.WriteBufferSize,
			CheckOrigin:     conf.CheckOrigin,
		},
		conf: conf,
	}
}

func (h *BoardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/round/{id}/board", func(r chi.Router) {
		r.Get("/ws", h.socket)
		r.Group(func(r chi.Router) {
			r.Use(withTimeout())
			r.Post("/brush", h.setBrush)
			r.Post("/eraser", h.toggleEraser)
			r.Post("/clear", h.clear)
			r.Get("/"+canvas.ExportFilename, h.export)
		})
	})
}

// drawView resolves a draw view; chat views have no board and 404.
func (h *BoardHandler) drawView(w http.ResponseWriter, r *http.Request) (*game.View, bool) {
	view, ok := lookup(h.store, w, r)
	if !ok {
		return nil, false
	}
	if view.Board == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return view, true
}

func (h *BoardHandler) setBrush(w http.ResponseWriter, r *http.Request) {
	view, ok := h.drawView(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if c := r.FormValue("color"); c != "" {
		if err := view.Board.SetColor(c); err != nil {
			if errors.Is(err, canvas.ErrInvalidColor) {
				http.Error(w, "invalid color", http.StatusBadRequest)
				return
			}
			hlog.FromRequest(r).Error().Err(err).Msg("set color failed")
			http.Error(w, "failed to set color", http.StatusInternalServerError)
			return
		}
	}
	if v := strings.TrimSpace(r.FormValue("width")); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid width", http.StatusBadRequest)
			return
		}
		view.Board.SetWidth(width)
	}
	h.controls(w, r, view)
}

func (h *BoardHandler) toggleEraser(w http.ResponseWriter, r *http.Request) {
	view, ok := h.drawView(w, r)
	if !ok {
		return
	}
	view.Board.ToggleEraser()
	h.controls(w, r, view)
}

func (h *BoardHandler) clear(w http.ResponseWriter, r *http.Request) {
	view, ok := h.drawView(w, r)
	if !ok {
		return
	}
	view.Board.Clear()
	h.controls(w, r, view)
}

// controls answers a board mutation: the controls fragment for htmx, a
// redirect back to the round otherwise.
func (h *BoardHandler) controls(w http.ResponseWriter, r *http.Request, view *game.View) {
	if isHTMX(r) {
		render(w, r, views.BoardControls(toBoard(view)))
		return
	}
	http.Redirect(w, r, "/round/"+view.ID, http.StatusSeeOther)
}

func (h *BoardHandler) export(w http.ResponseWriter, r *http.Request) {
	view, ok := h.drawView(w, r)
	if !ok {
		return
	}
	buf := bytespool.Get()
	defer bytespool.Put(buf)
	if err := view.Board.ExportPNG(buf); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("view_id", view.ID).Msg("export drawing failed")
		http.Error(w, "failed to export drawing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+canvas.ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
