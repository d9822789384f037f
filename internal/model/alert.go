package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Alert is the canonical, application-facing alert notification.
type Alert struct {
	Message            string    `json:"message" yaml:"message"`
	MoreInformationURL string    `json:"moreInformationUrl" yaml:"moreInformationUrl"`
	Type               AlertType `json:"type" yaml:"type"`
}

// AlertType is the alert severity. The integer values are part of the wire
// contract and must not be renumbered.
type AlertType int

const (
	Information AlertType = iota + 1
	Urgent
)

var alertTypeLabels = map[AlertType]string{
	Information: "Information",
	Urgent:      "Urgent",
}

func (t AlertType) String() string {
	if s, ok := alertTypeLabels[t]; ok {
		return s
	}
	return "AlertType(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is one of the declared alert types.
func (t AlertType) Valid() bool {
	_, ok := alertTypeLabels[t]
	return ok
}

// ParseAlertType maps the raw list value of the AlertType column to the enum.
// Matching ignores case and surrounding whitespace. The integer spellings
// "1" and "2" are accepted as well.
func ParseAlertType(s string) (AlertType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if t := AlertType(n); t.Valid() {
			return t, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlertType, s)
	}
	fold := cases.Fold()
	folded := fold.String(s)
	for t, label := range alertTypeLabels {
		if fold.String(label) == folded {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlertType, s)
}

// MarshalJSON encodes the alert type as its integer value.
func (t AlertType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlertType, int(t))
	}
	return []byte(strconv.Itoa(int(t))), nil
}

// UnmarshalJSON accepts only the declared integer values.
func (t *AlertType) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownAlertType, data)
	}
	v := AlertType(n)
	if !v.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAlertType, n)
	}
	*t = v
	return nil
}

// AlertItem is an alert list item as the platform returns it.
type AlertItem struct {
	AlertStartDateTime   string               `json:"AlertStartDateTime" yaml:"AlertStartDateTime"`
	AlertEndDateTime     string               `json:"AlertEndDateTime" yaml:"AlertEndDateTime"`
	AlertMessage         string               `json:"AlertMessage" yaml:"AlertMessage"`
	AlertMoreInformation AlertMoreInformation `json:"AlertMoreInformation" yaml:"AlertMoreInformation"`
	AlertType            string               `json:"AlertType" yaml:"AlertType"`
}

// AlertMoreInformation is the hyperlink column value (description + url).
type AlertMoreInformation struct {
	Description string `json:"Description" yaml:"Description"`
	Url         string `json:"Url" yaml:"Url" validate:"omitempty,uri"`
}
