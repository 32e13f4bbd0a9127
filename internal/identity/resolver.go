// Package identity maps API keys to the company and user they belong to.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"success-mcp/internal/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	ErrUnavailable = errors.New("identity lookup unavailable: no database configured")
	ErrNotFound    = errors.New("API key not recognised")
)

type Identity struct {
	CompanyID string `json:"companyId"`
	UserID    string `json:"userId"`
}

type Lookup interface {
	LookupAPIKey(ctx context.Context, key string) (Identity, error)
	FiscalYearStart(ctx context.Context, companyID string) (time.Month, error)
}

// Resolver caches lookups by the key exactly as presented, prefix included.
type Resolver struct {
	lookup Lookup
	prefix string
	cache  *expirable.LRU[string, Identity]
}

// NewResolver returns a resolver; lookup may be nil when no database is
// configured, in which case Resolve reports ErrUnavailable.
func NewResolver(lookup Lookup, prefix string, size int, ttl time.Duration) *Resolver {
	if size <= 0 {
		size = 256
	}
	return &Resolver{
		lookup: lookup,
		prefix: prefix,
		cache:  expirable.NewLRU[string, Identity](size, nil, ttl),
	}
}

func (r *Resolver) Available() bool { return r != nil && r.lookup != nil }

func (r *Resolver) Resolve(ctx context.Context, key string) (Identity, error) {
	if !r.Available() {
		return Identity{}, ErrUnavailable
	}
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}
	id, err := r.lookup.LookupAPIKey(ctx, strings.TrimPrefix(key, r.prefix))
	if err != nil {
		return Identity{}, err
	}
	r.cache.Add(key, id)
	logger.Debug("identity.resolved", "company_id", id.CompanyID, "user_id", id.UserID)
	return id, nil
}

// QuarterEnd returns the last day of the company's fiscal quarter containing
// now. Calendar quarters are used when no lookup is possible.
func (r *Resolver) QuarterEnd(ctx context.Context, companyID string, now time.Time) time.Time {
	start := time.January
	if r.Available() && companyID != "" {
		m, err := r.lookup.FiscalYearStart(ctx, companyID)
		if err != nil {
			logger.Warn("identity.fiscal_year", "company_id", companyID, "err", err)
		} else {
			start = m
		}
	}
	return QuarterEnd(now, start)
}
