// Package spfeed decodes SharePoint alert list items and term store
// hierarchies into stable Go types.
//
// Quick start:
//
//	f := spfeed.New()
//	active, err := f.ActiveAlerts(body) // body is a list items response
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range active {
//	    fmt.Println(a.Type, a.Message)
//	}
//
// Term sets decoded with DecodeTermSets are validated and kept in an
// in-memory store for lookups with Term. A Feed is safe for concurrent use.
package spfeed
