package spfeed

import (
	"fmt"

	"github.com/crimson-sun/spfeed/internal/alerts"
	"github.com/crimson-sun/spfeed/internal/payload"
	"github.com/crimson-sun/spfeed/internal/taxonomy"
)

// Feed decodes alert and term set payloads.
// Safe for concurrent use.
type Feed struct {
	norm     *alerts.Normalizer
	store    *taxonomy.Store
	validate taxonomy.ValidateOptions
}

// New creates a Feed.
func New(opts ...Option) *Feed {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Feed{
		norm:     alerts.NewNormalizer(o.logger).WithClock(o.now),
		store:    taxonomy.NewStore(o.cacheTTL),
		validate: taxonomy.ValidateOptions{CheckPaths: o.strictPaths},
	}
}

// DecodeAlerts decodes a list items payload (bare array or OData envelope)
// and maps every item. Items that cannot be mapped are skipped.
func (f *Feed) DecodeAlerts(data []byte) ([]Alert, error) {
	return f.decodeAlerts(data, alerts.Options{})
}

// ActiveAlerts is like DecodeAlerts but keeps only alerts whose start/end
// window contains the current time, urgent alerts first.
func (f *Feed) ActiveAlerts(data []byte) ([]Alert, error) {
	return f.decodeAlerts(data, alerts.Options{ActiveOnly: true, UrgentFirst: true})
}

func (f *Feed) decodeAlerts(data []byte, opts alerts.Options) ([]Alert, error) {
	items, err := payload.AlertItems(data)
	if err != nil {
		return nil, fmt.Errorf("spfeed: %w", err)
	}
	res, err := f.norm.Normalize(items, opts)
	if err != nil {
		return nil, fmt.Errorf("spfeed: %w", err)
	}
	return res.Alerts, nil
}

// MapAlert converts a single list item.
func (f *Feed) MapAlert(item AlertItem) (Alert, error) {
	return alerts.Map(item)
}

// DecodeTermSets decodes a term set payload (bare collection or
// ProcessQuery response), validates it and keeps it for Term lookups.
// All violations are reported together.
func (f *Feed) DecodeTermSets(data []byte) (TermSets, error) {
	sets, err := payload.TermSets(data)
	if err != nil {
		return TermSets{}, fmt.Errorf("spfeed: %w", err)
	}
	if err := f.Validate(sets); err != nil {
		return TermSets{}, err
	}
	f.store.Put(sets)
	return sets, nil
}

// Validate checks TermsCount consistency, term ids, ancestor cycles and,
// with WithStrictPaths, PathOfTerm.
func (f *Feed) Validate(sets TermSets) error {
	if err := taxonomy.Validate(sets, f.validate); err != nil {
		return fmt.Errorf("spfeed: %w", err)
	}
	return nil
}

// Labels lists the terms of set in pre-order with their depth and path.
func (f *Feed) Labels(set TermSet) []Label {
	return taxonomy.Flatten(set)
}

// Term returns a term from a term set previously decoded with
// DecodeTermSets. Ids may be in any GUID notation.
func (f *Feed) Term(setID, termID string) (Term, bool) {
	return f.store.Term(setID, termID)
}
