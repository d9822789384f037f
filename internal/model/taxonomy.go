package model

// TermSets is the term set collection returned by the term store.
// The underscore-wrapped fields are the remote object model's serialization
// markers and are carried verbatim.
type TermSets struct {
	ObjectType string    `json:"_ObjectType_" yaml:"_ObjectType_"`
	ChildItems []TermSet `json:"_Child_Items_" yaml:"_Child_Items_"`
}

// TermSet is a named collection of terms.
type TermSet struct {
	ObjectType     string `json:"_ObjectType_" yaml:"_ObjectType_"`
	ObjectIdentity string `json:"_ObjectIdentity_" yaml:"_ObjectIdentity_"`
	Id             string `json:"Id" yaml:"Id"`
	Name           string `json:"Name" yaml:"Name"`
	Description    string `json:"Description" yaml:"Description"`
	Terms          Terms  `json:"Terms" yaml:"Terms"`
}

// Terms is the top-level term collection of a term set.
type Terms struct {
	ObjectType string `json:"_ObjectType_" yaml:"_ObjectType_"`
	ChildItems []Term `json:"_Child_Items_" yaml:"_Child_Items_"`
}

// Term is a node of the term tree. TermsCount is the server's count of
// direct children and should equal len(Terms).
type Term struct {
	ObjectType     string `json:"_ObjectType_" yaml:"_ObjectType_"`
	ObjectIdentity string `json:"_ObjectIdentity_" yaml:"_ObjectIdentity_"`
	Id             string `json:"Id" yaml:"Id"`

	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
	Owner       string `json:"Owner" yaml:"Owner"`
	PathOfTerm  string `json:"PathOfTerm" yaml:"PathOfTerm"`
	PathDepth   *int   `json:"PathDepth,omitempty" yaml:"PathDepth,omitempty"` // nil when not computed

	CreatedDate      string `json:"CreatedDate" yaml:"CreatedDate"`
	LastModifiedDate string `json:"LastModifiedDate" yaml:"LastModifiedDate"`

	IsAvailableForTagging bool `json:"IsAvailableForTagging" yaml:"IsAvailableForTagging"`
	IsDeprecated          bool `json:"IsDeprecated" yaml:"IsDeprecated"`
	IsKeyword             bool `json:"IsKeyword" yaml:"IsKeyword"`
	IsPinned              bool `json:"IsPinned" yaml:"IsPinned"`
	IsPinnedRoot          bool `json:"IsPinnedRoot" yaml:"IsPinnedRoot"`
	IsReused              bool `json:"IsReused" yaml:"IsReused"`
	IsRoot                bool `json:"IsRoot" yaml:"IsRoot"`
	IsSourceTerm          bool `json:"IsSourceTerm" yaml:"IsSourceTerm"`

	CustomProperties      map[string]any `json:"CustomProperties" yaml:"CustomProperties"`
	LocalCustomProperties map[string]any `json:"LocalCustomProperties" yaml:"LocalCustomProperties"`
	CustomSortOrder       string         `json:"CustomSortOrder" yaml:"CustomSortOrder"`

	Terms      []Term `json:"Terms" yaml:"Terms"`
	TermsCount int    `json:"TermsCount" yaml:"TermsCount"`
}

// Clone returns a deep copy of the term and its subtree. Custom property
// maps are copied one level deep; their values are shared.
func (t Term) Clone() Term {
	c := t
	if t.PathDepth != nil {
		d := *t.PathDepth
		c.PathDepth = &d
	}
	c.CustomProperties = cloneProps(t.CustomProperties)
	c.LocalCustomProperties = cloneProps(t.LocalCustomProperties)
	if t.Terms != nil {
		c.Terms = make([]Term, len(t.Terms))
		for i, child := range t.Terms {
			c.Terms[i] = child.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the term set.
func (s TermSet) Clone() TermSet {
	c := s
	if s.Terms.ChildItems != nil {
		c.Terms.ChildItems = make([]Term, len(s.Terms.ChildItems))
		for i, t := range s.Terms.ChildItems {
			c.Terms.ChildItems[i] = t.Clone()
		}
	}
	return c
}

func cloneProps(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
