package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/crimson-sun/spfeed/internal/model"
)

// Options controls a Normalize run.
type Options struct {
	ActiveOnly  bool      // keep only items whose window contains At
	At          time.Time // evaluation instant for ActiveOnly; zero means now
	Dedup       bool
	UrgentFirst bool
	Strict      bool // fail on the first bad item instead of skipping it
}

// Result is the outcome of a Normalize run.
type Result struct {
	Alerts     []model.Alert
	Skipped    int       // items whose type or window could not be read
	Inactive   int       // items outside their window at the evaluation instant
	Duplicates int       // alerts dropped by Dedup
	NextChange time.Time // earliest future window bound, zero if none
}

// Normalizer maps batches of list items to alerts.
type Normalizer struct {
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewNormalizer returns a Normalizer. A nil logger disables logging.
func NewNormalizer(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{log: log, validate: validator.New(), now: time.Now}
}

// WithClock returns a copy of n that reads the current time from now.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	c := *n
	c.now = now
	return &c
}

// Normalize maps items in order, applying the filters in opts.
func (n *Normalizer) Normalize(items []model.AlertItem, opts Options) (Result, error) {
	at := opts.At
	if at.IsZero() {
		at = n.now()
	}

	var res Result
	out := make([]model.Alert, 0, len(items))
	for i, item := range items {
		a, err := n.normalizeOne(item)
		if err == nil && opts.ActiveOnly {
			var w Window
			w, err = WindowOf(item)
			if err == nil {
				if next := w.NextChange(at); !next.IsZero() && (res.NextChange.IsZero() || next.Before(res.NextChange)) {
					res.NextChange = next
				}
				if !w.Contains(at) {
					res.Inactive++
					continue
				}
			}
		}
		if err != nil {
			if opts.Strict {
				return Result{}, fmt.Errorf("alerts: item %d: %w", i, err)
			}
			res.Skipped++
			n.log.Warn("skipping alert item",
				zap.Int("index", i),
				zap.String("message", item.AlertMessage),
				zap.Error(err))
			continue
		}
		out = append(out, a)
	}

	if opts.Dedup {
		out, res.Duplicates = Deduplicate(out)
	}
	if opts.UrgentFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Type == model.Urgent && out[j].Type != model.Urgent
		})
	}
	res.Alerts = out

	n.log.Debug("normalized alerts",
		zap.Int("items", len(items)),
		zap.Int("alerts", len(out)),
		zap.Int("skipped", res.Skipped),
		zap.Int("inactive", res.Inactive),
		zap.Int("duplicates", res.Duplicates))
	return res, nil
}

func (n *Normalizer) normalizeOne(item model.AlertItem) (model.Alert, error) {
	a, err := Map(item)
	if err != nil {
		return model.Alert{}, err
	}
	// Links are carried verbatim; site-relative paths are common.
	if err := n.validate.Struct(item.AlertMoreInformation); err != nil {
		n.log.Warn("alert link is not a uri",
			zap.String("message", item.AlertMessage),
			zap.String("url", item.AlertMoreInformation.Url))
	}
	return a, nil
}
