// Package payload decodes the upstream analysis responses. The services are
// loosely typed (numbers sometimes arrive as strings) and the strengths and
// comparison services wrap their document in a JSON string inside an
// envelope. Both quirks are absorbed here so the normalizer only sees typed
// values.
package payload

import (
	"bytes"
	"errors"
	"fmt"

	"rift-rewind/internal/domain"

	jsoniter "github.com/json-iterator/go"
	"github.com/json-iterator/go/extra"
)

var (
	ErrEmpty     = errors.New("payload is empty")
	ErrMalformed = errors.New("payload is malformed")
	ErrPartial   = errors.New("payload is missing a required section")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	extra.RegisterFuzzyDecoders()
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeSummary decodes a summary payload. A body that is not a JSON object
// is an error the caller must surface; there is no profile without it.
func DecodeSummary(data []byte) (*domain.SummaryPayload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrEmpty
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: summary is not an object", ErrMalformed)
	}
	var s domain.SummaryPayload
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &s, nil
}

func DecodeStrengthsEnvelope(data []byte) (*domain.StrengthsEnvelope, error) {
	var env domain.StrengthsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: strengths envelope: %v", ErrMalformed, err)
	}
	return &env, nil
}

func DecodeComparisonEnvelope(data []byte) (*domain.ComparisonEnvelope, error) {
	var env domain.ComparisonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: comparison envelope: %v", ErrMalformed, err)
	}
	return &env, nil
}

// Strengths extracts the strengths/weaknesses document from its envelope.
func Strengths(env *domain.StrengthsEnvelope) (*domain.StrengthsPayload, error) {
	if env == nil {
		return nil, ErrEmpty
	}
	body, err := inner(env.Response)
	if err != nil {
		return nil, err
	}
	var p domain.StrengthsPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: strengths: %v", ErrMalformed, err)
	}
	if p.Scores == nil {
		return nil, fmt.Errorf("%w: strengths has no scores", ErrPartial)
	}
	return &p, nil
}

// Comparison extracts the comparison document from its envelope.
func Comparison(env *domain.ComparisonEnvelope) (*domain.ComparisonPayload, error) {
	if env == nil {
		return nil, ErrEmpty
	}
	body, err := inner(env.Response)
	if err != nil {
		return nil, err
	}
	var p domain.ComparisonPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: comparison: %v", ErrMalformed, err)
	}
	if p.PlaystyleSynergy == nil && p.Synergy == "" {
		return nil, fmt.Errorf("%w: comparison has no synergy", ErrPartial)
	}
	return &p, nil
}

// inner accepts the response either as an embedded object or as a string
// holding one. Agent output sometimes wraps the document in prose, so the
// outermost {...} span is used.
func inner(raw jsoniter.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrEmpty
	}

	body := []byte(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: response string: %v", ErrMalformed, err)
		}
		body = bytes.TrimSpace([]byte(s))
		if len(body) == 0 {
			return nil, ErrEmpty
		}
	}

	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformed)
	}
	return body[start : end+1], nil
}

// Recoverable reports whether err only means "no data for this section".
func Recoverable(err error) bool {
	return errors.Is(err, ErrEmpty) || errors.Is(err, ErrMalformed) || errors.Is(err, ErrPartial)
}
