package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"rift-rewind/internal/domain"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUpstream       = errors.New("failed to load profile, please try again")
	ErrUnknownSession = errors.New("unknown session")
	ErrNoProfile      = errors.New("no profile loaded for this session")
	ErrNoDuo          = errors.New("profile has no duo partner")
)

// Regions are the routing regions the summary service understands.
var Regions = []string{"americas", "europe", "asia", "sea"}

// Upstream is the set of analysis services a lookup depends on.
type Upstream interface {
	GetSummary(ctx context.Context, id domain.Identity) (*domain.SummaryPayload, error)
	AnalyzeStrengths(ctx context.Context, id domain.Identity) (*domain.StrengthsEnvelope, error)
	Compare(ctx context.Context, player, duo domain.Identity) (*domain.ComparisonEnvelope, error)
}

type LookupStore interface {
	Record(ctx context.Context, lookup domain.Lookup) error
	Search(ctx context.Context, query string, limit int) ([]domain.Lookup, error)
}

// ValidateIdentity trims and normalizes a submitted identity. Names may
// arrive query-escaped; a leading '#' on the tag line is dropped.
func ValidateIdentity(id domain.Identity) (domain.Identity, error) {
	name, err := url.QueryUnescape(strings.TrimSpace(id.GameName))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: failed to unescape game name: %v", ErrInvalidInput, err)
	}
	tag, err := url.QueryUnescape(strings.TrimSpace(id.TagLine))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: failed to unescape tag line: %v", ErrInvalidInput, err)
	}
	tag = strings.TrimPrefix(tag, "#")
	region := strings.ToLower(strings.TrimSpace(id.Region))

	switch {
	case name == "":
		return domain.Identity{}, fmt.Errorf("%w: game name is required", ErrInvalidInput)
	case tag == "":
		return domain.Identity{}, fmt.Errorf("%w: tag line is required", ErrInvalidInput)
	case !slices.Contains(Regions, region):
		return domain.Identity{}, fmt.Errorf("%w: region must be one of %s", ErrInvalidInput, strings.Join(Regions, ", "))
	}
	return domain.Identity{GameName: name, TagLine: tag, Region: region}, nil
}
