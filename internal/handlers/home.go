package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"nothuman/internal/canvas"
	"nothuman/internal/game"
	"nothuman/internal/tasks"
	"nothuman/internal/viewmodel"
	"nothuman/internal/views"
)

const (
	pageTitle = "Someone Is Not Human"

	// defaultWidth sizes a board when the client did not measure its container.
	defaultWidth = 640
	maxWidth     = 4096
	maxDPR       = 4
)

type HomeHandler struct {
	store      *game.Store
	catalog    *tasks.Catalog
	defaultDPR float64
}

func NewHomeHandler(store *game.Store, catalog *tasks.Catalog, defaultDPR float64) *HomeHandler {
	if defaultDPR <= 0 {
		defaultDPR = 1
	}
	return &HomeHandler{store: store, catalog: catalog, defaultDPR: defaultDPR}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(withTimeout())
		r.Get("/", h.home)
		r.Post("/rounds", h.createRound)
	})
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, views.HomePage(viewmodel.HomePage{
		Title: pageTitle,
		Modes: []viewmodel.ModeOption{
			{Value: string(game.ModeChat), Label: "Chat round"},
			{Value: string(game.ModeDraw), Label: "Draw round"},
		},
		DefaultDPR: h.defaultDPR,
	}))
}

func (h *HomeHandler) createRound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	mode := game.ModeChat
	if v := strings.TrimSpace(r.FormValue("mode")); v != "" {
		parsed, err := game.ParseMode(v)
		if err != nil {
			http.Error(w, "unknown mode", http.StatusBadRequest)
			return
		}
		mode = parsed
	}
	width := parseFloat(r.FormValue("width"), defaultWidth)
	if !(width >= 0 && width <= maxWidth) {
		http.Error(w, "width out of range", http.StatusBadRequest)
		return
	}
	dpr := parseFloat(r.FormValue("dpr"), h.defaultDPR)
	if !(dpr > 0 && dpr <= maxDPR) {
		dpr = h.defaultDPR
	}

	task, err := h.catalog.Pick(string(mode))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tasks.ErrUnknownMode) {
			status = http.StatusBadRequest
		}
		hlog.FromRequest(r).Error().Err(err).Str("mode", string(mode)).Msg("pick task failed")
		http.Error(w, "no task available", status)
		return
	}
	view, err := h.store.Mount(mode, task, width, dpr)
	if errors.Is(err, canvas.ErrTooLarge) {
		http.Error(w, "board too large", http.StatusBadRequest)
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("mount view failed")
		http.Error(w, "failed to start round", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/round/"+view.ID, http.StatusSeeOther)
}

func parseFloat(value string, fallback float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
