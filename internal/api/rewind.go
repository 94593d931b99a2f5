package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rift-rewind/internal/config"
	"rift-rewind/internal/constants"
	"rift-rewind/internal/domain"
	"rift-rewind/internal/payload"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

// cache kinds
const (
	KindSummary    = "summary"
	KindStrengths  = "strengths"
	KindComparison = "comparison"
)

const apiKeyHeader = "X-Api-Key"

// StatusError is a non-2xx answer from an upstream service.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: %d", e.Service, e.Code)
}

// Transient reports whether the call is worth repeating.
func (e *StatusError) Transient() bool {
	return e.Code >= 500 || e.Code == fasthttp.StatusTooManyRequests
}

// Cache stores raw upstream bodies. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, kind, key string) ([]byte, bool, error)
	Put(ctx context.Context, kind, key string, body []byte) error
}

type RewindClient struct {
	summaryURL    string
	strengthsURL  string
	comparisonURL string
	apiKey        string
	client        *fasthttp.Client
	cache         Cache
	logger        zerolog.Logger
	timeout       time.Duration
	retries       uint64
	backoff       time.Duration
}

func NewRewindClient(cfg *config.Config, cache Cache, logger zerolog.Logger) *RewindClient {
	return &RewindClient{
		summaryURL:    cfg.SummaryURL,
		strengthsURL:  cfg.StrengthsURL,
		comparisonURL: cfg.ComparisonURL,
		apiKey:        cfg.UpstreamAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		cache:   cache,
		logger:  logger,
		timeout: constants.ExternalAPITimeout,
		retries: constants.UpstreamRetries,
		backoff: constants.RetryBackoff,
	}
}

type summaryRequest struct {
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
	Region   string `json:"region"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func StrengthsPrompt(id domain.Identity) string {
	return fmt.Sprintf("Analyze strengths and weaknesses for player %s#%s in region %s", id.GameName, id.TagLine, id.Region)
}

// ComparisonPrompt names the duo first, then the player.
func ComparisonPrompt(player, duo domain.Identity) string {
	return fmt.Sprintf("Compare player %s#%s in region %s and player %s#%s in region %s",
		duo.GameName, duo.TagLine, duo.Region, player.GameName, player.TagLine, player.Region)
}

func (c *RewindClient) GetSummary(ctx context.Context, id domain.Identity) (*domain.SummaryPayload, error) {
	body := summaryRequest{GameName: id.GameName, TagLine: id.TagLine, Region: id.Region}
	return doRequest(ctx, c, KindSummary, cacheKey(id), c.summaryURL, body, payload.DecodeSummary, nil)
}

func (c *RewindClient) AnalyzeStrengths(ctx context.Context, id domain.Identity) (*domain.StrengthsEnvelope, error) {
	body := promptRequest{Prompt: StrengthsPrompt(id)}
	return doRequest(ctx, c, KindStrengths, cacheKey(id), c.strengthsURL, body, payload.DecodeStrengthsEnvelope, validStrengths)
}

func (c *RewindClient) Compare(ctx context.Context, player, duo domain.Identity) (*domain.ComparisonEnvelope, error) {
	body := promptRequest{Prompt: ComparisonPrompt(player, duo)}
	key := cacheKey(player) + "|" + cacheKey(duo)
	return doRequest(ctx, c, KindComparison, key, c.comparisonURL, body, payload.DecodeComparisonEnvelope, validComparison)
}

func cacheKey(id domain.Identity) string {
	return strings.ToLower(id.GameName + "#" + id.TagLine + "@" + id.Region)
}

func validStrengths(env *domain.StrengthsEnvelope) error {
	_, err := payload.Strengths(env)
	return err
}

func validComparison(env *domain.ComparisonEnvelope) error {
	_, err := payload.Comparison(env)
	return err
}

// doRequest returns a decoded payload from the cache or the upstream. Only
// bodies that pass validate are written back to the cache; a nil validate
// accepts anything that decodes.
func doRequest[T any](ctx context.Context, client *RewindClient, kind, key, url string, body any, decode func([]byte) (*T, error), validate func(*T) error) (*T, error) {
	if validate == nil {
		validate = func(*T) error { return nil }
	}
	if client.cache != nil {
		cached, ok, err := client.cache.Get(ctx, kind, key)
		if err != nil {
			client.logger.Warn().Err(err).Str("kind", kind).Msg("payload cache read failed")
		} else if ok {
			if result, err := decode(cached); err == nil && validate(result) == nil {
				return result, nil
			}
		}
	}

	reqBody, err := payload.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", kind, err)
	}

	var raw []byte
	backoff := retry.WithMaxRetries(client.retries, retry.NewConstant(client.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		data, err := client.post(ctx, kind, url, reqBody)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && !statusErr.Transient() {
				return err
			}
			client.logger.Debug().Err(err).Str("kind", kind).Msg("upstream call failed")
			return retry.RetryableError(err)
		}
		raw = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", kind, err)
	}

	if err := validate(result); err != nil {
		client.logger.Debug().Err(err).Str("kind", kind).Msg("not caching degraded payload")
		return result, nil
	}
	if client.cache != nil {
		if err := client.cache.Put(ctx, kind, key, raw); err != nil {
			client.logger.Warn().Err(err).Str("kind", kind).Msg("payload cache write failed")
		}
	}
	return result, nil
}

func (c *RewindClient) post(ctx context.Context, kind, url string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	req.SetBody(body)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", kind, err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, &StatusError{Service: kind, Code: code}
	}

	// the response body is only valid until resp is released
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}
