package taxonomy

import (
	"github.com/hashicorp/go-multierror"

	"github.com/crimson-sun/spfeed/internal/model"
	"github.com/crimson-sun/spfeed/internal/spwire"
)

// ValidateOptions selects the optional checks.
type ValidateOptions struct {
	// CheckPaths compares each non-empty PathOfTerm with the names of its
	// ancestors joined by PathSeparator.
	CheckPaths bool
	// AllowNonGuidIDs skips the GUID check on term and term set ids.
	AllowNonGuidIDs bool
}

// Validate checks every term of every set and returns all violations as a
// *multierror.Error, or nil when the tree is consistent.
func Validate(sets model.TermSets, opts ValidateOptions) error {
	var result *multierror.Error
	for i := range sets.ChildItems {
		if err := ValidateSet(sets.ChildItems[i], opts); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// ValidateSet checks a single term set.
func ValidateSet(set model.TermSet, opts ValidateOptions) error {
	var result *multierror.Error
	if !opts.AllowNonGuidIDs && set.Id != "" {
		if _, err := spwire.ParseGuid(set.Id); err != nil {
			result = multierror.Append(result, model.Violation(model.ErrInvalidTermID, set.Id, "term set %q", set.Name))
		}
	}

	// The callback returns nothing but SkipChildren.
	_ = Walk(set, func(v Visit) error {
		t := v.Term
		id := spwire.NormalizeGuid(t.Id)

		if t.TermsCount != len(t.Terms) {
			result = multierror.Append(result, model.Violation(model.ErrTermsCountMismatch, t.Id,
				"%q has TermsCount=%d but %d child terms", t.Name, t.TermsCount, len(t.Terms)))
		}
		if !opts.AllowNonGuidIDs {
			if _, err := spwire.ParseGuid(t.Id); err != nil {
				result = multierror.Append(result, model.Violation(model.ErrInvalidTermID, t.Id, "%q", t.Name))
			}
		}
		if id != "" {
			for _, anc := range v.Ancestors {
				if spwire.NormalizeGuid(anc.Id) == id {
					result = multierror.Append(result, model.Violation(model.ErrTermCycle, t.Id,
						"%q repeats ancestor %q", v.Path, anc.Name))
					// Do not descend into a repeated subtree.
					return SkipChildren
				}
			}
		}
		if opts.CheckPaths && t.PathOfTerm != "" && t.PathOfTerm != v.Path {
			result = multierror.Append(result, model.Violation(model.ErrPathMismatch, t.Id,
				"PathOfTerm %q, ancestors give %q", t.PathOfTerm, v.Path))
		}
		return nil
	})
	return result.ErrorOrNil()
}
