package alerts

import "github.com/crimson-sun/spfeed/internal/model"

// Deduplicate collapses alerts with identical message, link and type.
// Returns alerts in first-occurrence order and the number dropped.
func Deduplicate(in []model.Alert) ([]model.Alert, int) {
	if len(in) == 0 {
		return nil, 0
	}

	// model.Alert is comparable, so it serves as its own key.
	seen := make(map[model.Alert]struct{}, len(in))
	out := make([]model.Alert, 0, len(in))
	for _, a := range in {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out, len(in) - len(out)
}
