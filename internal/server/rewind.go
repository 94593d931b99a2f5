package server

import (
	"context"
	"net/http"

	"rift-rewind/internal/domain"
	"rift-rewind/internal/radar"
	"rift-rewind/internal/service"
	"rift-rewind/internal/state"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const RewindServicePath = "/rewind.v1.RewindService/"

const (
	GetProfileProcedure        = RewindServicePath + "GetProfile"
	GetDuoDetailsProcedure     = RewindServicePath + "GetDuoDetails"
	GetRadarProcedure          = RewindServicePath + "GetRadar"
	SearchSuggestionsProcedure = RewindServicePath + "SearchSuggestions"
	HealthProcedure            = RewindServicePath + "Health"
)

type GetProfileRequest struct {
	SessionID string `json:"sessionId"`
	GameName  string `json:"gameName"`
	TagLine   string `json:"tagLine"`
	Region    string `json:"region"`
}

type GetProfileResponse struct {
	SessionID string                `json:"sessionId"`
	Profile   *domain.PlayerProfile `json:"profile"`
}

// GetDuoDetailsRequest leaves the identity empty to use the profile's best
// duo.
type GetDuoDetailsRequest struct {
	SessionID string `json:"sessionId"`
	GameName  string `json:"gameName,omitempty"`
	TagLine   string `json:"tagLine,omitempty"`
	Region    string `json:"region,omitempty"`
}

type GetDuoDetailsResponse struct {
	Profile *domain.PlayerProfile `json:"profile"`
}

type GetRadarRequest struct {
	SessionID string `json:"sessionId"`
	Overlay   bool   `json:"overlay"`
}

type RadarSeries struct {
	Name       string           `json:"name"`
	Fill       string           `json:"fill"`
	Stroke     string           `json:"stroke"`
	Projection radar.Projection `json:"projection"`
}

type GetRadarResponse struct {
	Labels []string      `json:"labels"`
	Series []RadarSeries `json:"series"`
}

type SearchSuggestionsRequest struct {
	Query string `json:"query"`
}

type Suggestion struct {
	ID       string `json:"id"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
	Region   string `json:"region"`
	Rank     string `json:"rank,omitempty"`
}

type SearchSuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

type RewindServer struct {
	profiles *service.ProfileService
	duos     *service.DuoService
	radar    *service.RadarService
	sessions *state.Sessions
	logger   zerolog.Logger
}

func NewRewindServer(profiles *service.ProfileService, duos *service.DuoService, radarSvc *service.RadarService, sessions *state.Sessions, logger zerolog.Logger) *RewindServer {
	return &RewindServer{profiles: profiles, duos: duos, radar: radarSvc, sessions: sessions, logger: logger}
}

// NewRewindServiceHandler mounts every procedure under RewindServicePath.
func NewRewindServiceHandler(s *RewindServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetProfileProcedure, connect.NewUnaryHandler(GetProfileProcedure, s.GetProfile, opts...))
	mux.Handle(GetDuoDetailsProcedure, connect.NewUnaryHandler(GetDuoDetailsProcedure, s.GetDuoDetails, opts...))
	mux.Handle(GetRadarProcedure, connect.NewUnaryHandler(GetRadarProcedure, s.GetRadar, opts...))
	mux.Handle(SearchSuggestionsProcedure, connect.NewUnaryHandler(SearchSuggestionsProcedure, s.SearchSuggestions, opts...))
	mux.Handle(HealthProcedure, connect.NewUnaryHandler(HealthProcedure, s.Health, opts...))
	return RewindServicePath, mux
}

func (s *RewindServer) GetProfile(ctx context.Context, req *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error) {
	id := domain.Identity{GameName: req.Msg.GameName, TagLine: req.Msg.TagLine, Region: req.Msg.Region}
	sessionID, profile, err := s.profiles.FetchProfile(ctx, req.Msg.SessionID, id)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session", sessionID).Msg("get profile failed")
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetProfileResponse{SessionID: sessionID, Profile: profile}), nil
}

func (s *RewindServer) GetDuoDetails(ctx context.Context, req *connect.Request[GetDuoDetailsRequest]) (*connect.Response[GetDuoDetailsResponse], error) {
	var override *domain.Identity
	if req.Msg.GameName != "" || req.Msg.TagLine != "" {
		override = &domain.Identity{GameName: req.Msg.GameName, TagLine: req.Msg.TagLine, Region: req.Msg.Region}
	}
	profile, err := s.duos.FetchDuoDetails(ctx, req.Msg.SessionID, override)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session", req.Msg.SessionID).Msg("get duo details failed")
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetDuoDetailsResponse{Profile: profile}), nil
}

func (s *RewindServer) GetRadar(ctx context.Context, req *connect.Request[GetRadarRequest]) (*connect.Response[GetRadarResponse], error) {
	chart, _, err := s.radar.Chart(req.Msg.SessionID, req.Msg.Overlay)
	if err != nil {
		return nil, toConnectError(err)
	}
	projections, err := radar.Overlay(chart.Geometry, chart.Series...)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &GetRadarResponse{
		Labels: chart.Labels[:],
		Series: make([]RadarSeries, 0, len(projections)),
	}
	for i, p := range projections {
		series := chart.Series[i]
		resp.Series = append(resp.Series, RadarSeries{
			Name:       series.Name,
			Fill:       series.Palette.Fill,
			Stroke:     series.Palette.Stroke,
			Projection: p,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *RewindServer) SearchSuggestions(ctx context.Context, req *connect.Request[SearchSuggestionsRequest]) (*connect.Response[SearchSuggestionsResponse], error) {
	lookups, err := s.profiles.SearchSuggestions(ctx, req.Msg.Query)
	if err != nil {
		return nil, toConnectError(err)
	}

	suggestions := make([]Suggestion, 0, len(lookups))
	for _, l := range lookups {
		suggestions = append(suggestions, Suggestion{
			ID:       l.ID,
			GameName: l.GameName,
			TagLine:  l.TagLine,
			Region:   l.Region,
			Rank:     l.Rank,
		})
	}
	return connect.NewResponse(&SearchSuggestionsResponse{Suggestions: suggestions}), nil
}

func healthStatus(sessions *state.Sessions) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"status":   "ok",
		"sessions": sessions.Len(),
	})
}

func (s *RewindServer) Health(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	status, err := healthStatus(s.sessions)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(status), nil
}
