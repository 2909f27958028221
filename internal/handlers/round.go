package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"nothuman/internal/canvas"
	"nothuman/internal/game"
	"nothuman/internal/round"
	"nothuman/internal/viewmodel"
	"nothuman/internal/views"
)

const keepAliveInterval = 25 * time.Second

type RoundHandler struct {
	store   *game.Store
	baseURL string
}

func NewRoundHandler(store *game.Store, baseURL string) *RoundHandler {
	return &RoundHandler{store: store, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func (h *RoundHandler) RegisterRoutes(r chi.Router) {
	r.Route("/round/{id}", func(r chi.Router) {
		r.Get("/stream", h.stream)
		r.Group(func(r chi.Router) {
			r.Use(withTimeout())
			r.Get("/", h.roundPage)
			r.Delete("/", h.unmount)
			r.Get("/timer", h.timerFragment)
			r.Post("/draft", h.setDraft)
			r.Post("/send", h.send)
			r.Post("/restart", h.restart)
		})
	})
}

// lookup resolves the view named in the URL, writing a 404 when it is gone.
func lookup(store *game.Store, w http.ResponseWriter, r *http.Request) (*game.View, bool) {
	view, err := store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, game.ErrViewNotFound) {
			hlog.FromRequest(r).Error().Err(err).Msg("lookup view failed")
		}
		http.NotFound(w, r)
		return nil, false
	}
	return view, true
}

func (h *RoundHandler) roundPage(w http.ResponseWriter, r *http.Request) {
	view, ok := lookup(h.store, w, r)
	if !ok {
		return
	}
	snap := view.Snapshot()
	data := viewmodel.RoundPage{
		Title:    pageTitle,
		ViewID:   view.ID,
		Mode:     string(view.Mode),
		Task:     view.Task,
		RoundURL: h.roundURL(r, view.ID),
		Timer:    toTimer(view.ID, snap.Display),
		Draft:    snap.Draft,
		CanSend:  snap.CanSend,
		Sent:     snap.Sent,
	}
	if view.Board != nil {
		board := toBoard(view)
		data.Board = &board
	}
	render(w, r, views.RoundPage(data))
}

func (h *RoundHandler) timerFragment(w http.ResponseWriter, r *http.Request) {
	view, ok := lookup(h.store, w, r)
	if !ok {
		return
	}
	render(w, r, views.TimerFragment(toTimer(view.ID, view.Timer.Display())))
}

func (h *RoundHandler) setDraft(w http.ResponseWriter, r *http.Request) {
	view, ok := lookup(h.store, w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view.SetDraft(r.FormValue("text"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) send(w http.ResponseWriter, r *http.Request) {
	view, ok := lookup(h.store, w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if _, posted := r.PostForm["text"]; posted {
		view.SetDraft(r.PostForm.Get("text"))
	}
	_, sent := view.Send(r.Context())
	if isHTMX(r) {
		if sent {
			w.WriteHeader(http.StatusNoContent)
		} else {
			w.WriteHeader(http.StatusConflict)
		}
		return
	}
	http.Redirect(w, r, "/round/"+view.ID, http.StatusSeeOther)
}

func (h *RoundHandler) restart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Remount(id); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/round/"+id, http.StatusSeeOther)
}

func (h *RoundHandler) unmount(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Unmount(chi.URLParam(r, "id")); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) stream(w http.ResponseWriter, r *http.Request) {
	view, ok := lookup(h.store, w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sub, unsubscribe, err := h.store.Subscribe(view.ID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sendTimer := func() {
		html := renderToString(r, views.TimerFragment(toTimer(view.ID, view.Timer.Display())))
		writeSSE(w, game.EventRound, html)
		flusher.Flush()
	}
	sendTimer()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				writeSSE(w, "unmounted", view.ID)
				flusher.Flush()
				return
			}
			if event == game.EventRound {
				sendTimer()
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func (h *RoundHandler) roundURL(r *http.Request, id string) string {
	if h.baseURL != "" {
		return h.baseURL + "/round/" + id
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/round/" + id
}

func toTimer(id string, d round.Display) viewmodel.Timer {
	return viewmodel.Timer{
		ViewID:       id,
		State:        d.State.String(),
		SecondsLeft:  d.SecondsLeft,
		Label:        d.Label,
		Danger:       d.Danger,
		InputEnabled: d.InputEnabled,
		Hint:         d.Hint,
	}
}

func toBoard(view *game.View) viewmodel.Board {
	brush := view.Board.Brush()
	cssW, cssH, pxW, pxH := view.Board.Size()
	base := "/round/" + view.ID + "/board"
	return viewmodel.Board{
		ViewID:     view.ID,
		CSSWidth:   cssW,
		CSSHeight:  cssH,
		PixWidth:   pxW,
		PixHeight:  pxH,
		DPR:        view.Board.DevicePixelRatio(),
		Color:      brush.Color,
		Width:      brush.Width,
		MinWidth:   canvas.MinBrushWidth,
		MaxWidth:   canvas.MaxBrushWidth,
		Eraser:     brush.Eraser,
		Enabled:    view.Board.Enabled(),
		SocketPath: base + "/ws",
		ExportPath: base + "/" + canvas.ExportFilename,
		ExportName: canvas.ExportFilename,
	}
}
