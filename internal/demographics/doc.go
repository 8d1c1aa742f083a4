// Package demographics is the bounded context that turns a batch of randomly
// generated people into an age-group histogram and a table of the oldest
// people.
//
//	demographics/
//	├── models/               # PersonRecord, AgeBucket, TableRow, Report
//	├── shaper/               # pure bucketing and top-N projection
//	├── clients/randomuser/   # upstream HTTP client
//	├── tracer/               # tracing abstraction (OTel, noop)
//	├── service/              # fetch + shape, coalesced across callers
//	├── chart/                # pie chart rendering with explicit handle ownership
//	├── view/                 # HTML page and table rendering
//	└── handler/              # chi routes for the page and the JSON API
//
// Key invariants:
//   - Bucket order is the declaration order, never first-seen order
//   - Ages below the first bucket are dropped silently
//   - A fetch either yields a full Report or an error; nothing partial is shown
package demographics
