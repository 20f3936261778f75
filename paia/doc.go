// Package paia implements a client for the Patrons Account Information API
// (PAIA), the HTTP/JSON protocol library systems expose for patron account
// data: loans, reservations, storage requests and fees.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: authenticated access to the PAIA core and auth endpoints,
//     including the bearer-token session lifecycle with transparent re-login
//   - Status: the fixed patron-document status lexicon (codes 0-5)
//   - Money: the protocol's monetary value grammar in integer minor units
//   - Normalization: status-driven projection of raw item and fee documents
//     into field-complete hold, loan, storage-request and fee records
//   - Actions: cancel, renew and place-request with per-item outcome reports
//
// # Usage
//
// Create a client with the server URL and the patron's credentials:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := paia.NewClient(
//		"https://paia.example.org",
//		"B0001234", "secret",
//		logger,
//		paia.WithRenewableDefault(false),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	loans, err := client.GetLoans(ctx)
//
// Login happens lazily on the first operation and again whenever the token
// expires; callers never manage tokens themselves.
//
// # Failure policy
//
// Read operations (items, fees and the views derived from them) degrade to
// an empty collection on protocol or transport failure so a host catalog can
// render a partial account page; only credential failures propagate. Write
// operations always return an ActionReport describing per-item success and
// failure instead of a bare error.
package paia
