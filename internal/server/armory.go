package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"classic-armory/internal/service"

	"github.com/rs/zerolog"
)

type ArmoryServer struct {
	profileSvc *service.ProfileService
	guildSvc   *service.GuildService
	parseSvc   *service.ParseService
	logger     zerolog.Logger
}

func NewArmoryServer(profileSvc *service.ProfileService, guildSvc *service.GuildService, parseSvc *service.ParseService, logger zerolog.Logger) *ArmoryServer {
	return &ArmoryServer{
		profileSvc: profileSvc,
		guildSvc:   guildSvc,
		parseSvc:   parseSvc,
		logger:     logger,
	}
}

func (s *ArmoryServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/character/{region}/{realm}/{name}", s.getCharacter)
	mux.HandleFunc("POST /api/character/{region}/{realm}/{name}/parse", s.refreshParse)
	mux.HandleFunc("GET /api/characters/recent", s.recentCharacters)
	mux.HandleFunc("GET /api/guild/{region}/{realm}/{name}", s.getGuild)
	mux.HandleFunc("GET /api/guilds/recent", s.recentGuilds)
	mux.HandleFunc("GET /healthz", s.health)
}

func (s *ArmoryServer) getCharacter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	profile, err := s.profileSvc.GetProfile(
		r.Context(),
		r.PathValue("name"),
		r.PathValue("realm"),
		r.PathValue("region"),
		q.Get("refresh") == "true",
		q.Get("era") == "true",
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *ArmoryServer) refreshParse(w http.ResponseWriter, r *http.Request) {
	parse, err := s.parseSvc.RefreshParse(
		r.Context(),
		r.PathValue("name"),
		r.PathValue("realm"),
		r.PathValue("region"),
		r.URL.Query().Get("era") == "true",
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parse)
}

func (s *ArmoryServer) recentCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.profileSvc.Recent(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, characters)
}

func (s *ArmoryServer) getGuild(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	guild, err := s.guildSvc.GetGuild(
		r.Context(),
		r.PathValue("name"),
		r.PathValue("realm"),
		r.PathValue("region"),
		q.Get("refresh") == "true",
		q.Get("era") == "true",
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guild)
}

func (s *ArmoryServer) recentGuilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := s.guildSvc.Recent(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guilds)
}

func (s *ArmoryServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *ArmoryServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCacheUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrAuthFailed),
		errors.Is(err, service.ErrInvalidRemoteData),
		errors.Is(err, service.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
