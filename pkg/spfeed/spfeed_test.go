package spfeed

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const alertsBody = `{"value":[
	{"AlertMessage":"past","AlertType":"Information","AlertStartDateTime":"/Date(1577836800000)/","AlertEndDateTime":"/Date(1577923200000)/"},
	{"AlertMessage":"newsletter","AlertType":"Information"},
	{"AlertMessage":"outage","AlertType":"URGENT","AlertMoreInformation":{"Url":"https://status.example.com"}},
	{"AlertMessage":"mystery","AlertType":"Critical"}
]}`

const termSetsBody = `[
	{"SchemaVersion":"15.0.0.0","LibraryVersion":"16.0.0.0","ErrorInfo":null,"TraceCorrelationId":"x"},
	7,
	{"IsNull":false},
	{
		"_ObjectType_":"SP.Taxonomy.TermSetCollection",
		"_Child_Items_":[{
			"_ObjectType_":"SP.Taxonomy.TermSet",
			"_ObjectIdentity_":"abc:ts:8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f",
			"Id":"\/Guid(8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f)\/",
			"Name":"Departments",
			"Terms":{"_ObjectType_":"SP.Taxonomy.TermCollection","_Child_Items_":[
				{"Id":"\/Guid(11111111-1111-1111-1111-111111111111)\/","Name":"Finance","PathOfTerm":"Finance","TermsCount":2,"Terms":[
					{"Id":"\/Guid(22222222-2222-2222-2222-222222222222)\/","Name":"Payroll","PathOfTerm":"Finance;Payroll"},
					{"Id":"\/Guid(33333333-3333-3333-3333-333333333333)\/","Name":"Audit","PathOfTerm":"Finance;Audit"}
				]},
				{"Id":"\/Guid(44444444-4444-4444-4444-444444444444)\/","Name":"Legal","PathOfTerm":"Legal"}
			]}
		}]
	}
]`

func TestDecodeAlerts(t *testing.T) {
	f := New(WithLogger(zaptest.NewLogger(t)))
	got, err := f.DecodeAlerts([]byte(alertsBody))
	require.NoError(t, err)
	assert.Equal(t, []Alert{
		{Message: "past", Type: Information},
		{Message: "newsletter", Type: Information},
		{Message: "outage", MoreInformationURL: "https://status.example.com", Type: Urgent},
	}, got)
}

func TestDecodeAlerts_SiteRelativeLink(t *testing.T) {
	f := New(WithLogger(zaptest.NewLogger(t)))
	got, err := f.DecodeAlerts([]byte(`[{"AlertMessage":"Payroll closes early","AlertType":"Urgent","AlertMoreInformation":{"Url":"/sites/hr/SitePages/Payroll.aspx"}}]`))
	require.NoError(t, err)
	assert.Equal(t, []Alert{
		{Message: "Payroll closes early", MoreInformationURL: "/sites/hr/SitePages/Payroll.aspx", Type: Urgent},
	}, got)
}

func TestActiveAlerts(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := New(WithClock(func() time.Time { return at }))
	got, err := f.ActiveAlerts([]byte(alertsBody))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "outage", got[0].Message)
	assert.Equal(t, "newsletter", got[1].Message)
}

func TestDecodeAlerts_Errors(t *testing.T) {
	f := New()
	_, err := f.DecodeAlerts(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = f.DecodeAlerts([]byte(`{"error":{"code":"-1","message":{"lang":"en-US","value":"List does not exist."}}}`))
	assert.ErrorIs(t, err, ErrServerError)
	assert.ErrorContains(t, err, "List does not exist.")
}

func TestMapAlert(t *testing.T) {
	a, err := New().MapAlert(AlertItem{AlertMessage: "m", AlertType: "2"})
	require.NoError(t, err)
	assert.Equal(t, Alert{Message: "m", Type: Urgent}, a)

	_, err = New().MapAlert(AlertItem{AlertType: "3"})
	assert.ErrorIs(t, err, ErrUnknownAlertType)
}

func TestDecodeTermSetsAndLookup(t *testing.T) {
	f := New(WithStrictPaths())
	sets, err := f.DecodeTermSets([]byte(termSetsBody))
	require.NoError(t, err)
	require.Len(t, sets.ChildItems, 1)

	set := sets.ChildItems[0]
	assert.Equal(t, "abc:ts:8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f", set.ObjectIdentity)
	finance := set.Terms.ChildItems[0]
	assert.Equal(t, 2, finance.TermsCount)
	assert.Len(t, finance.Terms, finance.TermsCount)

	term, ok := f.Term("{8ED8C9EA-7052-4C1D-A4D7-B9C10BFFEA6F}", "/Guid(33333333-3333-3333-3333-333333333333)/")
	require.True(t, ok)
	assert.Equal(t, "Audit", term.Name)

	labels := f.Labels(set)
	require.Len(t, labels, 4)
	assert.Equal(t, "Finance;Audit", labels[2].Path)
}

func TestTerm_ChangesDoNotReachStore(t *testing.T) {
	const setID = "8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f"
	f := New()
	_, err := f.DecodeTermSets([]byte(termSetsBody))
	require.NoError(t, err)

	finance, ok := f.Term(setID, "11111111-1111-1111-1111-111111111111")
	require.True(t, ok)
	finance.Terms[0].Name = "Wages"

	payroll, ok := f.Term(setID, "22222222-2222-2222-2222-222222222222")
	require.True(t, ok)
	assert.Equal(t, "Payroll", payroll.Name)
}

func TestDecodeTermSets_ReportsAllViolations(t *testing.T) {
	f := New()
	sets, err := f.DecodeTermSets([]byte(termSetsBody))
	require.NoError(t, err)

	terms := sets.ChildItems[0].Terms.ChildItems
	terms[0].TermsCount = 5
	terms[0].Terms[1].Terms = []Term{{Id: terms[0].Id, Name: "Finance again"}}
	terms[0].Terms[1].TermsCount = 1

	err = f.Validate(sets)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTermsCountMismatch)
	assert.ErrorIs(t, err, ErrTermCycle)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
}

func TestDecodeTermSets_InvalidNotStored(t *testing.T) {
	body := `{"_Child_Items_":[{"Id":"8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f","Name":"S","Terms":{"_Child_Items_":[
		{"Id":"11111111-1111-1111-1111-111111111111","Name":"A","TermsCount":1}]}}]}`
	f := New()
	_, err := f.DecodeTermSets([]byte(body))
	assert.ErrorIs(t, err, ErrTermsCountMismatch)

	_, ok := f.Term("8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f", "11111111-1111-1111-1111-111111111111")
	assert.False(t, ok)
}

func TestCacheTTL(t *testing.T) {
	f := New(WithCacheTTL(20 * time.Millisecond))
	_, err := f.DecodeTermSets([]byte(termSetsBody))
	require.NoError(t, err)

	_, ok := f.Term("8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f", "44444444-4444-4444-4444-444444444444")
	require.True(t, ok)
	time.Sleep(50 * time.Millisecond)
	_, ok = f.Term("8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f", "44444444-4444-4444-4444-444444444444")
	assert.False(t, ok)
}

func TestConcurrentUse(t *testing.T) {
	f := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.DecodeTermSets([]byte(termSetsBody))
			assert.NoError(t, err)
			_, err = f.ActiveAlerts([]byte(alertsBody))
			assert.NoError(t, err)
			f.Term("8ed8c9ea-7052-4c1d-a4d7-b9c10bffea6f", "11111111-1111-1111-1111-111111111111")
		}()
	}
	wg.Wait()
}

func TestParseAlertType(t *testing.T) {
	typ, err := ParseAlertType("information")
	require.NoError(t, err)
	assert.Equal(t, Information, typ)
}
