// Package taxonomy validates and traverses term store hierarchies.
//
// Term sets are read-only snapshots. Nothing in this package mutates its
// input; AnnotateDepth returns a copy.
package taxonomy

import (
	"errors"
	"strings"

	"github.com/crimson-sun/spfeed/internal/model"
	"github.com/crimson-sun/spfeed/internal/spwire"
)

// PathSeparator joins term names in PathOfTerm.
const PathSeparator = ";"

// SkipChildren may be returned by a WalkFunc to skip a term's subtree.
var SkipChildren = errors.New("skip children")

// Visit describes a term reached by Walk.
type Visit struct {
	Term      *model.Term
	Depth     int           // 1 for top-level terms
	Path      string        // ancestor names and the term name joined by PathSeparator
	Ancestors []*model.Term // root first; shared between calls, copy to retain
}

// WalkFunc is called for every term in pre-order. Returning SkipChildren
// prunes the subtree; any other error stops the walk.
type WalkFunc func(v Visit) error

// Walk visits every term of set depth-first in document order.
func Walk(set model.TermSet, fn WalkFunc) error {
	var ancestors []*model.Term
	var names []string
	var walk func(terms []model.Term) error
	walk = func(terms []model.Term) error {
		for i := range terms {
			t := &terms[i]
			names = append(names, t.Name)
			err := fn(Visit{
				Term:      t,
				Depth:     len(ancestors) + 1,
				Path:      strings.Join(names, PathSeparator),
				Ancestors: ancestors,
			})
			switch {
			case errors.Is(err, SkipChildren):
			case err != nil:
				return err
			default:
				ancestors = append(ancestors, t)
				err = walk(t.Terms)
				ancestors = ancestors[:len(ancestors)-1]
				if err != nil {
					return err
				}
			}
			names = names[:len(names)-1]
		}
		return nil
	}
	return walk(set.Terms.ChildItems)
}

// AnnotateDepth returns a copy of sets with PathDepth set on every term.
// Top-level terms have depth 1.
func AnnotateDepth(sets model.TermSets) model.TermSets {
	out := sets
	if sets.ChildItems == nil {
		return out
	}
	out.ChildItems = make([]model.TermSet, len(sets.ChildItems))
	for i, set := range sets.ChildItems {
		c := set.Clone()
		// The callback never fails.
		_ = Walk(c, func(v Visit) error {
			d := v.Depth
			v.Term.PathDepth = &d
			return nil
		})
		out.ChildItems[i] = c
	}
	return out
}

// Label is a flattened view of a term.
type Label struct {
	ID                  string `json:"id" yaml:"id"`
	SetID               string `json:"setId" yaml:"setId"`
	Name                string `json:"name" yaml:"name"`
	Path                string `json:"path" yaml:"path"`
	Depth               int    `json:"depth" yaml:"depth"`
	Deprecated          bool   `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	AvailableForTagging bool   `json:"availableForTagging" yaml:"availableForTagging"`
}

// Flatten lists the terms of set in pre-order.
func Flatten(set model.TermSet) []Label {
	var labels []Label
	setID := spwire.NormalizeGuid(set.Id)
	// The callback never fails.
	_ = Walk(set, func(v Visit) error {
		labels = append(labels, Label{
			ID:                  spwire.NormalizeGuid(v.Term.Id),
			SetID:               setID,
			Name:                v.Term.Name,
			Path:                v.Path,
			Depth:               v.Depth,
			Deprecated:          v.Term.IsDeprecated,
			AvailableForTagging: v.Term.IsAvailableForTagging,
		})
		return nil
	})
	return labels
}

// errFound stops Find's walk early.
var errFound = errors.New("found")

// Find returns a copy of the first term whose id matches. Ids are
// compared in normalized GUID form.
func Find(sets model.TermSets, id string) (model.Term, bool) {
	want := spwire.NormalizeGuid(id)
	for _, set := range sets.ChildItems {
		var hit model.Term
		err := Walk(set, func(v Visit) error {
			if spwire.NormalizeGuid(v.Term.Id) == want {
				hit = v.Term.Clone()
				return errFound
			}
			return nil
		})
		if errors.Is(err, errFound) {
			return hit, true
		}
	}
	return model.Term{}, false
}
