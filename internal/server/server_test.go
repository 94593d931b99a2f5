package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rift-rewind/internal/domain"
	"rift-rewind/internal/normalize"
	"rift-rewind/internal/service"
	"rift-rewind/internal/state"

	"connectrpc.com/connect"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubUpstream struct {
	fail bool
}

func (s *stubUpstream) GetSummary(_ context.Context, id domain.Identity) (*domain.SummaryPayload, error) {
	if s.fail {
		return nil, errors.New("summary API error: 502")
	}
	p := &domain.SummaryPayload{
		Summoner:         domain.RawSummoner{Name: id.GameName, Rank: "Gold II"},
		TopChampions:     []domain.RawChampion{{Name: "Ahri"}},
		MonthlyProgress:  []domain.MonthlyProgress{{Month: "Jan", Wins: 5, Losses: 2, KDA: 3}},
		RoleDistribution: nil,
	}
	if id.GameName == "Foo" {
		p.BestDuo = &domain.RawDuo{Name: "Bar", Tagline: "EUW", GamesTogether: 4}
	}
	return p, nil
}

func (s *stubUpstream) AnalyzeStrengths(_ context.Context, id domain.Identity) (*domain.StrengthsEnvelope, error) {
	doc := `{"scores":{"farming":70,"vision":30}}`
	if id.GameName == "Bar" {
		doc = `{"scores":{"teamplay":90}}`
	}
	raw, _ := jsoniter.Marshal(doc)
	return &domain.StrengthsEnvelope{Response: raw}, nil
}

func (s *stubUpstream) Compare(context.Context, domain.Identity, domain.Identity) (*domain.ComparisonEnvelope, error) {
	return &domain.ComparisonEnvelope{Response: jsoniter.RawMessage(`{"playstyle_synergy":{"classification":"complementary","synergy_insight":"Scale together"}}`)}, nil
}

type stubLookups struct {
	recorded []domain.Lookup
}

func (s *stubLookups) Record(_ context.Context, l domain.Lookup) error {
	l.ID = "lookup-" + l.GameName
	s.recorded = append(s.recorded, l)
	return nil
}

func (s *stubLookups) Search(_ context.Context, query string, _ int) ([]domain.Lookup, error) {
	out := []domain.Lookup{}
	for _, l := range s.recorded {
		if strings.Contains(strings.ToLower(l.GameName), strings.ToLower(query)) {
			out = append(out, l)
		}
	}
	return out, nil
}

type testEnv struct {
	upstream *stubUpstream
	url      string
	http     *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	upstream := &stubUpstream{}
	sessions := state.NewSessions(zerolog.Nop())
	n := normalize.New(nil)
	profiles := service.NewProfileService(upstream, &stubLookups{}, sessions, n, zerolog.Nop())
	duos := service.NewDuoService(upstream, sessions, n, zerolog.Nop())
	radarSvc := service.NewRadarService(sessions)

	mux := http.NewServeMux()
	path, handler := NewRewindServiceHandler(NewRewindServer(profiles, duos, radarSvc, sessions, zerolog.Nop()))
	mux.Handle(path, handler)
	NewChartHandler(profiles, radarSvc, sessions, zerolog.Nop()).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testEnv{upstream: upstream, url: srv.URL, http: srv.Client()}
}

func call[Req, Res any](t *testing.T, env *testEnv, procedure string, req *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](env.http, env.url+procedure, connect.WithCodec(jsonCodec{}))
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (env *testEnv) get(t *testing.T, path string) (int, string, string) {
	t.Helper()
	resp, err := env.http.Get(env.url + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)

	resp, err := call[GetProfileRequest, GetProfileResponse](t, env, GetProfileProcedure,
		&GetProfileRequest{GameName: "Foo", TagLine: "NA1", Region: "americas"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Foo", resp.Profile.Summoner.Name)
	assert.Len(t, resp.Profile.PerformanceMetrics, 6)
	assert.Equal(t, "Bar", resp.Profile.BestDuo.Name)

	suggestions, err := call[SearchSuggestionsRequest, SearchSuggestionsResponse](t, env, SearchSuggestionsProcedure,
		&SearchSuggestionsRequest{Query: "fo"})
	require.NoError(t, err)
	require.Len(t, suggestions.Suggestions, 1)
	assert.Equal(t, "Gold II", suggestions.Suggestions[0].Rank)
}

func TestGetProfile_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := call[GetProfileRequest, GetProfileResponse](t, env, GetProfileProcedure,
		&GetProfileRequest{GameName: "Foo", TagLine: "NA1", Region: "mars"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	env.upstream.fail = true
	_, err = call[GetProfileRequest, GetProfileResponse](t, env, GetProfileProcedure,
		&GetProfileRequest{GameName: "Foo", TagLine: "NA1", Region: "americas"})
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))

	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, "failed to load profile, please try again", connectErr.Message())
}

func TestGetDuoDetailsAndRadar(t *testing.T) {
	env := newTestEnv(t)

	profile, err := call[GetProfileRequest, GetProfileResponse](t, env, GetProfileProcedure,
		&GetProfileRequest{GameName: "Foo", TagLine: "NA1", Region: "americas"})
	require.NoError(t, err)
	session := profile.SessionID

	radarResp, err := call[GetRadarRequest, GetRadarResponse](t, env, GetRadarProcedure,
		&GetRadarRequest{SessionID: session, Overlay: true})
	require.NoError(t, err)
	require.Len(t, radarResp.Series, 1)
	assert.Equal(t, []string{"Farming", "Vision", "Aggression", "Teamplay", "Consistency", "Versatility"}, radarResp.Labels)
	assert.Equal(t, 150.0, radarResp.Series[0].Projection.Points[0].X)
	assert.Equal(t, 80.0, radarResp.Series[0].Projection.Points[0].Y)

	duo, err := call[GetDuoDetailsRequest, GetDuoDetailsResponse](t, env, GetDuoDetailsProcedure,
		&GetDuoDetailsRequest{SessionID: session})
	require.NoError(t, err)
	assert.Len(t, duo.Profile.BestDuo.PerformanceMetrics, 6)
	assert.Equal(t, 94, duo.Profile.DuoStats.Synergy)
	assert.Equal(t, "Scale together", duo.Profile.DuoStats.BestCombo)

	radarResp, err = call[GetRadarRequest, GetRadarResponse](t, env, GetRadarProcedure,
		&GetRadarRequest{SessionID: session, Overlay: true})
	require.NoError(t, err)
	require.Len(t, radarResp.Series, 2)
	assert.Equal(t, "rgb(236, 72, 153)", radarResp.Series[1].Stroke)

	status, contentType, body := env.get(t, "/charts/radar.svg?session="+session)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "image/svg+xml", contentType)
	assert.Equal(t, 2, strings.Count(body, "<path"))

	status, _, body = env.get(t, "/charts/radar.svg?overlay=0&session="+session)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, strings.Count(body, "<path"))

	for _, page := range []string{"radar", "monthly"} {
		status, contentType, _ = env.get(t, "/charts/"+page+".html?session="+session)
		assert.Equal(t, http.StatusOK, status, page)
		assert.Contains(t, contentType, "text/html", page)
	}

	status, _, _ = env.get(t, "/charts/roles.html?session="+session)
	assert.Equal(t, http.StatusNotFound, status, "no role data")
}

func TestSessionErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := call[GetDuoDetailsRequest, GetDuoDetailsResponse](t, env, GetDuoDetailsProcedure,
		&GetDuoDetailsRequest{SessionID: "missing"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = call[GetRadarRequest, GetRadarResponse](t, env, GetRadarProcedure, &GetRadarRequest{SessionID: "missing"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	status, _, _ := env.get(t, "/charts/radar.svg?session=missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRawJSONWire(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.http.Post(env.url+GetProfileProcedure, "application/json",
		strings.NewReader(`{"gameName":"Foo","tagLine":"NA1","region":"EUROPE"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["sessionId"])
	profile := body["profile"].(map[string]any)
	assert.Contains(t, profile, "performanceMetrics")
	assert.Contains(t, profile, "bestDuo")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := call[emptypb.Empty, structpb.Struct](t, env, HealthProcedure, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Fields["status"].GetStringValue())

	status, contentType, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, body)

	_, err = call[GetProfileRequest, GetProfileResponse](t, env, GetProfileProcedure, &GetProfileRequest{GameName: "Foo", TagLine: "NA1", Region: "americas"})
	require.NoError(t, err)
	_, _, body = env.get(t, "/healthz")
	assert.JSONEq(t, `{"status":"ok","sessions":1}`, body)
}

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&GetRadarRequest{SessionID: "s", Overlay: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionId":"s","overlay":true}`, string(data))

	var req GetRadarRequest
	require.NoError(t, codec.Unmarshal(nil, &req))
	assert.Equal(t, GetRadarRequest{}, req)

	st, _ := structpb.NewStruct(map[string]any{"a": "b"})
	data, err = codec.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"b"}`, string(data))

	var out structpb.Struct
	require.NoError(t, codec.Unmarshal([]byte(`{"x":1}`), &out))
	assert.Equal(t, 1.0, out.Fields["x"].GetNumberValue())
}
