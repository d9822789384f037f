package spfeed

import (
	"github.com/crimson-sun/spfeed/internal/model"
	"github.com/crimson-sun/spfeed/internal/taxonomy"
)

type (
	// Alert is the canonical alert notification.
	Alert = model.Alert
	// AlertType is the alert severity; see Information and Urgent.
	AlertType = model.AlertType
	// AlertItem is one raw alert list item.
	AlertItem = model.AlertItem
	// AlertMoreInformation is the hyperlink column of an alert list item.
	AlertMoreInformation = model.AlertMoreInformation

	TermSets = model.TermSets
	TermSet  = model.TermSet
	Terms    = model.Terms
	Term     = model.Term

	// Label is a flattened term.
	Label = taxonomy.Label
)

const (
	Information = model.Information
	Urgent      = model.Urgent
)

// Error kinds. Match with errors.Is.
var (
	ErrUnknownAlertType   = model.ErrUnknownAlertType
	ErrInvalidWindow      = model.ErrInvalidWindow
	ErrTermsCountMismatch = model.ErrTermsCountMismatch
	ErrTermCycle          = model.ErrTermCycle
	ErrInvalidTermID      = model.ErrInvalidTermID
	ErrPathMismatch       = model.ErrPathMismatch
	ErrEmptyPayload       = model.ErrEmptyPayload
	ErrServerError        = model.ErrServerError
)

// ParseAlertType parses "Information", "Urgent" (any case) or their
// integer values.
func ParseAlertType(s string) (AlertType, error) {
	return model.ParseAlertType(s)
}
