// Package subscription decides whether a user may save another document
// under their plan.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-studio/internal/storage"
	"github.com/jonathan/resume-studio/internal/types"
)

// Tier is a subscription plan
type Tier string

const (
	TierFree       Tier = "Free"
	TierPro        Tier = "Pro"
	TierEnterprise Tier = "Enterprise"
)

// ParseTier maps a stored plan name to a tier. Unknown or empty names are Free.
func ParseTier(plan string) Tier {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case "pro":
		return TierPro
	case "enterprise":
		return TierEnterprise
	default:
		return TierFree
	}
}

// Unlimited marks a quota with no ceiling
const Unlimited = -1

// Limits are the per-kind document quotas of one tier
type Limits struct {
	Resumes      int `json:"resumes"`
	CoverLetters int `json:"cover_letters"`
}

// Quotas maps each tier to its limits. Tiers without an entry are unlimited.
type Quotas map[Tier]Limits

// DefaultQuotas returns the standard plan configuration
func DefaultQuotas() Quotas {
	return Quotas{
		TierFree:       {Resumes: 2, CoverLetters: 3},
		TierPro:        {Resumes: 50, CoverLetters: 50},
		TierEnterprise: {Resumes: Unlimited, CoverLetters: Unlimited},
	}
}

// Limit returns the quota of a document kind for a tier
func (q Quotas) Limit(kind types.DocumentKind, tier Tier) int {
	l, ok := q[tier]
	if !ok {
		return Unlimited
	}
	if kind == types.KindCoverLetter {
		return l.CoverLetters
	}
	return l.Resumes
}

// Predicate decides whether a user who already has existing documents of a
// kind may create one more
type Predicate func(existing int, tier Tier) bool

// PredicateFor returns the quota predicate of a document kind
func (q Quotas) PredicateFor(kind types.DocumentKind) Predicate {
	return func(existing int, tier Tier) bool {
		limit := q.Limit(kind, tier)
		return limit == Unlimited || existing < limit
	}
}

// QuotaExceededError is returned when a save would exceed the user's plan
type QuotaExceededError struct {
	Kind     types.DocumentKind
	Tier     Tier
	Existing int
	Limit    int
}

func (e *QuotaExceededError) Error() string {
	noun := "resumes"
	if e.Kind == types.KindCoverLetter {
		noun = "cover letters"
	}
	if e.Limit >= 0 {
		return fmt.Sprintf("the %s plan allows %d saved %s; upgrade to Pro or Enterprise for more %s", e.Tier, e.Limit, noun, noun)
	}
	return fmt.Sprintf("the %s plan does not allow more saved %s; upgrade to Pro or Enterprise for more %s", e.Tier, noun, noun)
}

// Collection returns the storage collection holding documents of a kind
func Collection(kind types.DocumentKind) string {
	if kind == types.KindCoverLetter {
		return storage.CollectionCoverLetters
	}
	return storage.CollectionResumes
}

type planRecord struct {
	Plan string `json:"plan"`
}

// LookupTier returns the tier of the user's most recent subscription, or Free
// when there is none
func LookupTier(ctx context.Context, store storage.Store, userID string) (Tier, error) {
	recs, err := store.Select(ctx, storage.CollectionSubscriptions, storage.Filter{UserID: userID, Limit: 1, NewestFirst: true})
	if err != nil {
		return TierFree, err
	}
	if len(recs) == 0 {
		return TierFree, nil
	}
	var p planRecord
	if err := json.Unmarshal(recs[0].Content, &p); err != nil {
		return TierFree, &storage.Error{Op: "decode", Collection: storage.CollectionSubscriptions, Cause: err}
	}
	return ParseTier(p.Plan), nil
}

// Subscribe records a plan for a user
func Subscribe(ctx context.Context, store storage.Store, userID string, tier Tier) (storage.Record, error) {
	content, err := json.Marshal(planRecord{Plan: string(tier)})
	if err != nil {
		return storage.Record{}, err
	}
	return store.Insert(ctx, storage.CollectionSubscriptions, storage.Record{UserID: userID, Content: content})
}
