package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/crimson-sun/spfeed/internal/model"
)

func maintenanceItem() model.AlertItem {
	return model.AlertItem{
		AlertMessage: "Maintenance tonight",
		AlertMoreInformation: model.AlertMoreInformation{
			Description: "Planned downtime",
			Url:         "https://example.com/status",
		},
		AlertType:          "Urgent",
		AlertStartDateTime: "2024-01-01T00:00:00Z",
		AlertEndDateTime:   "2024-01-02T00:00:00Z",
	}
}

func TestMap(t *testing.T) {
	got, err := Map(maintenanceItem())
	require.NoError(t, err)
	assert.Equal(t, model.Alert{
		Message:            "Maintenance tonight",
		MoreInformationURL: "https://example.com/status",
		Type:               model.Urgent,
	}, got)
}

func TestMap_CarriesFieldsVerbatim(t *testing.T) {
	item := model.AlertItem{AlertMessage: "  spaced  ", AlertType: "information"}
	got, err := Map(item)
	require.NoError(t, err)
	assert.Equal(t, item.AlertMessage, got.Message)
	assert.Equal(t, item.AlertMoreInformation.Url, got.MoreInformationURL)
	assert.Equal(t, model.Information, got.Type)
}

func TestMap_UnknownType(t *testing.T) {
	item := maintenanceItem()
	item.AlertType = "Critical"
	_, err := Map(item)
	assert.ErrorIs(t, err, model.ErrUnknownAlertType)
}

func TestWindowOf(t *testing.T) {
	w, err := WindowOf(maintenanceItem())
	require.NoError(t, err)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, w.Start.Equal(start))
	assert.True(t, w.End.Equal(end))

	assert.False(t, w.Contains(start.Add(-time.Second)))
	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(12*time.Hour)))
	assert.False(t, w.Contains(end))
}

func TestWindowOf_OpenBounds(t *testing.T) {
	w, err := WindowOf(model.AlertItem{})
	require.NoError(t, err)
	assert.True(t, w.Contains(time.Now()))
	assert.True(t, w.NextChange(time.Now()).IsZero())

	w, err = WindowOf(model.AlertItem{AlertEndDateTime: "/Date(1704153600000)/"})
	require.NoError(t, err)
	assert.True(t, w.Contains(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestWindowOf_Invalid(t *testing.T) {
	item := maintenanceItem()
	item.AlertStartDateTime = "soon"
	_, err := WindowOf(item)
	assert.ErrorIs(t, err, model.ErrInvalidWindow)

	item = maintenanceItem()
	item.AlertStartDateTime, item.AlertEndDateTime = item.AlertEndDateTime, item.AlertStartDateTime
	_, err = WindowOf(item)
	assert.ErrorIs(t, err, model.ErrInvalidWindow)
}

func TestWindowNextChange(t *testing.T) {
	w, err := WindowOf(maintenanceItem())
	require.NoError(t, err)
	before := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	during := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	after := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	assert.True(t, w.NextChange(before).Equal(w.Start))
	assert.True(t, w.NextChange(during).Equal(w.End))
	assert.True(t, w.NextChange(after).IsZero())
}

func TestDeduplicate(t *testing.T) {
	a := model.Alert{Message: "a", Type: model.Information}
	b := model.Alert{Message: "b", Type: model.Urgent}
	aUrgent := model.Alert{Message: "a", Type: model.Urgent}

	out, dropped := Deduplicate([]model.Alert{a, b, a, aUrgent, b})
	assert.Equal(t, []model.Alert{a, b, aUrgent}, out)
	assert.Equal(t, 2, dropped)

	out, dropped = Deduplicate(nil)
	assert.Nil(t, out)
	assert.Zero(t, dropped)
}

func TestNormalize_SkipsBadItems(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	n := NewNormalizer(zap.New(core))
	bad := maintenanceItem()
	bad.AlertType = "Critical"
	relative := maintenanceItem()
	relative.AlertMoreInformation.Url = "/sites/hr/SitePages/Payroll.aspx"
	badURL := maintenanceItem()
	badURL.AlertMoreInformation.Url = "not a url"
	noURL := maintenanceItem()
	noURL.AlertMoreInformation = model.AlertMoreInformation{}

	res, err := n.Normalize([]model.AlertItem{maintenanceItem(), bad, relative, badURL, noURL}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Alerts, 4)
	assert.Equal(t, "https://example.com/status", res.Alerts[0].MoreInformationURL)
	assert.Equal(t, "/sites/hr/SitePages/Payroll.aspx", res.Alerts[1].MoreInformationURL)
	assert.Equal(t, "not a url", res.Alerts[2].MoreInformationURL)
	assert.Empty(t, res.Alerts[3].MoreInformationURL)

	assert.Equal(t, 1, logs.FilterMessage("skipping alert item").Len())
	assert.Equal(t, 1, logs.FilterMessage("alert link is not a uri").Len())
}

func TestNormalize_StrictKeepsOddLinks(t *testing.T) {
	n := NewNormalizer(nil)
	item := maintenanceItem()
	item.AlertMoreInformation.Url = "not a url"
	res, err := n.Normalize([]model.AlertItem{item}, Options{Strict: true})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "not a url", res.Alerts[0].MoreInformationURL)
}

func TestNormalize_Strict(t *testing.T) {
	n := NewNormalizer(nil)
	bad := maintenanceItem()
	bad.AlertType = ""
	_, err := n.Normalize([]model.AlertItem{maintenanceItem(), bad}, Options{Strict: true})
	assert.ErrorIs(t, err, model.ErrUnknownAlertType)
	assert.ErrorContains(t, err, "item 1")
}

func TestNormalize_ActiveOnly(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := NewNormalizer(nil).WithClock(func() time.Time { return at })

	future := maintenanceItem()
	future.AlertMessage = "next week"
	future.AlertStartDateTime = "2024-01-08T00:00:00Z"
	future.AlertEndDateTime = "2024-01-09T00:00:00Z"

	expired := maintenanceItem()
	expired.AlertMessage = "last year"
	expired.AlertStartDateTime = "2023-01-01T00:00:00Z"
	expired.AlertEndDateTime = "2023-01-02T00:00:00Z"

	broken := maintenanceItem()
	broken.AlertEndDateTime = "whenever"

	res, err := n.Normalize([]model.AlertItem{future, maintenanceItem(), expired, broken}, Options{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "Maintenance tonight", res.Alerts[0].Message)
	assert.Equal(t, 2, res.Inactive)
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, res.NextChange.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), "next change %v", res.NextChange)
}

func TestNormalize_ActiveOnlyExplicitInstant(t *testing.T) {
	n := NewNormalizer(nil)
	res, err := n.Normalize([]model.AlertItem{maintenanceItem()}, Options{
		ActiveOnly: true,
		At:         time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
	assert.Equal(t, 1, res.Inactive)
}

func TestNormalize_DedupAndUrgentFirst(t *testing.T) {
	info := model.AlertItem{AlertMessage: "info", AlertType: "Information"}
	urgent := model.AlertItem{AlertMessage: "urgent", AlertType: "Urgent"}
	urgent2 := model.AlertItem{AlertMessage: "urgent 2", AlertType: "Urgent"}

	n := NewNormalizer(nil)
	res, err := n.Normalize([]model.AlertItem{info, urgent, info, urgent2}, Options{Dedup: true, UrgentFirst: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Duplicates)
	require.Len(t, res.Alerts, 3)
	assert.Equal(t, "urgent", res.Alerts[0].Message)
	assert.Equal(t, "urgent 2", res.Alerts[1].Message)
	assert.Equal(t, "info", res.Alerts[2].Message)
}
