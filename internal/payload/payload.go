// Package payload extracts the alert and term store contracts from the
// response envelopes SharePoint wraps them in.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/crimson-sun/spfeed/internal/model"
)

// TermSetCollectionType is the _ObjectType_ of a term set collection.
const TermSetCollectionType = "SP.Taxonomy.TermSetCollection"

// AlertItems decodes alert list items from a bare array, an OData verbose
// envelope ({"d":{"results":[...]}}) or an OData light envelope ({"value":[...]}).
func AlertItems(data []byte) ([]model.AlertItem, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.ErrEmptyPayload
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("payload: alert items: invalid JSON")
	}

	root := gjson.ParseBytes(data)
	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.Get("d.results").IsArray():
		list = root.Get("d.results")
	case root.Get("value").IsArray():
		list = root.Get("value")
	case root.Get("error").Exists(), root.Get("odata\\.error").Exists():
		return nil, fmt.Errorf("payload: %w: %s", model.ErrServerError, odataErrorMessage(root))
	default:
		return nil, fmt.Errorf("payload: alert items: no item array in envelope")
	}

	var items []model.AlertItem
	if err := json.Unmarshal([]byte(list.Raw), &items); err != nil {
		return nil, fmt.Errorf("payload: alert items: %w", err)
	}
	return items, nil
}

// TermSets decodes a term set collection from either a bare collection
// object or a client object model ProcessQuery response array.
func TermSets(data []byte) (model.TermSets, error) {
	var sets model.TermSets
	if len(bytes.TrimSpace(data)) == 0 {
		return sets, model.ErrEmptyPayload
	}
	if !gjson.ValidBytes(data) {
		return sets, fmt.Errorf("payload: term sets: invalid JSON")
	}

	root := gjson.ParseBytes(data)
	obj := root
	if root.IsArray() {
		if info := root.Get("0.ErrorInfo"); info.Exists() && info.Type != gjson.Null {
			return sets, fmt.Errorf("payload: %w: %s (%s)", model.ErrServerError,
				info.Get("ErrorMessage").String(), info.Get("ErrorTypeName").String())
		}
		obj = root.Get(`#(_ObjectType_=="` + TermSetCollectionType + `")`)
		if !obj.Exists() {
			return sets, fmt.Errorf("payload: term sets: no %s in response", TermSetCollectionType)
		}
	} else if !root.IsObject() {
		return sets, fmt.Errorf("payload: term sets: expected object or array")
	}

	if err := json.Unmarshal([]byte(obj.Raw), &sets); err != nil {
		return sets, fmt.Errorf("payload: term sets: %w", err)
	}
	return sets, nil
}

func odataErrorMessage(root gjson.Result) string {
	for _, path := range []string{"error.message.value", "error.message", "odata\\.error.message.value"} {
		if v := root.Get(path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return "unknown error"
}
