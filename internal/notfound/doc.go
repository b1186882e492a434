// Package notfound decides whether an HTTP response is effectively a "not
// found" page, including soft 404s served with a 200 status.
//
// For every directory a candidate lives in, a Store captures one reference
// response by requesting a random path that cannot exist. Candidate bodies
// are cleaned of URL-derived noise with Clean and compared against the
// cleaned reference with a Comparator. The Engine ties these together and
// adds the cheap checks that run before any fuzzy comparison.
//
// A Store is owned by one scan session. Call Reset between independent
// scans to drop references and force fresh probes.
package notfound
