// Package alerts maps alert list items to canonical alerts.
package alerts

import (
	"fmt"
	"time"

	"github.com/crimson-sun/spfeed/internal/model"
	"github.com/crimson-sun/spfeed/internal/spwire"
)

// Map converts a raw list item into an Alert. The hyperlink description is
// not carried over.
func Map(item model.AlertItem) (model.Alert, error) {
	typ, err := model.ParseAlertType(item.AlertType)
	if err != nil {
		return model.Alert{}, fmt.Errorf("alerts: map %q: %w", item.AlertMessage, err)
	}
	return model.Alert{
		Message:            item.AlertMessage,
		MoreInformationURL: item.AlertMoreInformation.Url,
		Type:               typ,
	}, nil
}

// Window is the validity interval of an alert. A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowOf parses the start and end of an item.
func WindowOf(item model.AlertItem) (Window, error) {
	start, err := spwire.ParseDate(item.AlertStartDateTime)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start: %v", model.ErrInvalidWindow, err)
	}
	end, err := spwire.ParseDate(item.AlertEndDateTime)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end: %v", model.ErrInvalidWindow, err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return Window{}, fmt.Errorf("%w: end %s before start %s", model.ErrInvalidWindow,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// NextChange returns the earliest bound strictly after t, or the zero time
// when the window never changes state again.
func (w Window) NextChange(t time.Time) time.Time {
	if !w.Start.IsZero() && w.Start.After(t) {
		return w.Start
	}
	if !w.End.IsZero() && w.End.After(t) {
		return w.End
	}
	return time.Time{}
}
