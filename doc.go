// Package panther provides a native Go client for the Panther SIEM
// platform's GraphQL and REST APIs.
//
// # Features
//
//   - Data lake query execution with asynchronous submit/poll/fetch and a
//     blocking convenience call
//   - Service-based architecture for expandability
//   - Modern Go 1.25+ iterators for pagination
//   - Typed errors for precise error handling
//   - Functional options for flexible configuration
//
// # Quick Start
//
//	client, err := panther.NewClient(
//	    panther.WithDomain("acme.runpanther.net"),
//	    panther.WithAPIToken(token),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run a data lake query and wait for the results
//	rows, err := client.Search.Execute(ctx, "SELECT * FROM panther_logs.public.aws_cloudtrail LIMIT 10")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range rows {
//	    fmt.Println(row["eventName"])
//	}
//
// # Query Execution
//
// Data lake queries run asynchronously on the backend. Execute blocks until
// the query finishes, polling every second for the first twenty polls and
// every ten seconds after that. For manual control, use Submit and Results
// directly:
//
//	queryID, err := client.Search.Submit(ctx, sql)
//	// ... later ...
//	results, err := client.Search.Results(ctx, queryID)
//	if results.Status == panther.QuerySucceeded {
//	    fmt.Println(results.Rows)
//	}
//
// Cancelling the context passed to Execute stops the wait but not the
// remote query, which keeps running on the backend.
//
// # Identifiers
//
// Panther requires different identifier encodings per resource: alerts use
// compact hexadecimal IDs, data lake query results use the hyphenated UUID
// form. All methods accept either form and convert as needed; HyphenatedID
// and CompactID expose the conversions.
//
// # Error Handling
//
// The package uses typed errors that can be inspected with errors.As:
//
//	rows, err := client.Search.Execute(ctx, sql)
//	if err != nil {
//	    var queryErr *panther.QueryFailedError
//	    if errors.As(err, &queryErr) {
//	        // The SQL itself was bad; fix and retry.
//	    }
//	}
//
// # Pagination
//
// Use iterators for automatic pagination:
//
//	start := panther.TimestampFromUnix(1702314671)
//	end := panther.TimestampFromTime(time.Now())
//	for alert, err := range client.Alerts.List(ctx, start, end) {
//	    // ...
//	}
//
//	// Collect all results into a slice
//	alerts, err := panther.Collect(client.Alerts.List(ctx, start, end))
package panther
