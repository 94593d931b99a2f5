package server

import (
	"bytes"
	"net/http"

	"rift-rewind/internal/charts"
	"rift-rewind/internal/domain"
	"rift-rewind/internal/radar"
	"rift-rewind/internal/service"
	"rift-rewind/internal/state"

	"github.com/rs/zerolog"
)

// ChartHandler serves rendered charts for a session's profile.
type ChartHandler struct {
	profiles *service.ProfileService
	radar    *service.RadarService
	sessions *state.Sessions
	config   charts.ChartConfig
	logger   zerolog.Logger
}

func NewChartHandler(profiles *service.ProfileService, radarSvc *service.RadarService, sessions *state.Sessions, logger zerolog.Logger) *ChartHandler {
	return &ChartHandler{
		profiles: profiles,
		radar:    radarSvc,
		sessions: sessions,
		config:   charts.DefaultChartConfig(),
		logger:   logger,
	}
}

func (h *ChartHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /charts/radar.svg", h.RadarSVG)
	mux.HandleFunc("GET /charts/radar.html", h.RadarHTML)
	mux.HandleFunc("GET /charts/monthly.html", h.MonthlyHTML)
	mux.HandleFunc("GET /charts/roles.html", h.RolesHTML)
	mux.HandleFunc("GET /healthz", h.Healthz)
}

func overlay(r *http.Request) bool {
	switch r.URL.Query().Get("overlay") {
	case "0", "false":
		return false
	}
	return true
}

func (h *ChartHandler) RadarSVG(w http.ResponseWriter, r *http.Request) {
	chart, _, err := h.radar.Chart(r.URL.Query().Get("session"), overlay(r))
	if err != nil {
		h.fail(w, r, err, httpStatus(err))
		return
	}

	var buf bytes.Buffer
	if err := radar.RenderSVG(&buf, chart); err != nil {
		h.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

func (h *ChartHandler) RadarHTML(w http.ResponseWriter, r *http.Request) {
	_, profile, err := h.radar.Chart(r.URL.Query().Get("session"), overlay(r))
	if err != nil {
		h.fail(w, r, err, httpStatus(err))
		return
	}

	series := []charts.RadarSeries{{Name: profile.Summoner.Name, Metrics: profile.PerformanceMetrics}}
	if overlay(r) {
		series = append(series, charts.RadarSeries{Name: profile.BestDuo.Name, Metrics: profile.BestDuo.PerformanceMetrics})
	}

	cfg := h.config
	cfg.Title = "Playstyle"
	cfg.Subtitle = profile.Archetype
	h.render(w, r, func(buf *bytes.Buffer) error { return charts.RenderRadar(buf, series, cfg) })
}

func (h *ChartHandler) MonthlyHTML(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}
	cfg := h.config
	cfg.Title = "Monthly Progress"
	h.render(w, r, func(buf *bytes.Buffer) error { return charts.RenderMonthly(buf, profile.MonthlyProgress, cfg) })
}

func (h *ChartHandler) RolesHTML(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}
	cfg := h.config
	cfg.Title = "Role Distribution"
	h.render(w, r, func(buf *bytes.Buffer) error { return charts.RenderRoles(buf, profile.RoleDistribution, cfg) })
}

func (h *ChartHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	status, err := healthStatus(h.sessions)
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	body, err := jsonCodec{}.Marshal(status)
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (h *ChartHandler) profile(w http.ResponseWriter, r *http.Request) (*domain.PlayerProfile, bool) {
	profile, _, err := h.profiles.Current(r.URL.Query().Get("session"))
	if err != nil {
		h.fail(w, r, err, httpStatus(err))
		return nil, false
	}
	return profile, true
}

// render buffers the page so a failed render never leaves a half-written
// response behind.
func (h *ChartHandler) render(w http.ResponseWriter, r *http.Request, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.fail(w, r, err, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *ChartHandler) fail(w http.ResponseWriter, r *http.Request, err error, status int) {
	zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("chart request failed")
	http.Error(w, err.Error(), status)
}
