// Package queue implements the delayed task queue used for unban and reminder jobs.
// Delivery is at least once: a claimed job is leased, and becomes claimable again
// when the lease runs out without an ack.
package queue

import "time"

// DefaultLease is how long a claimed job stays hidden from other claims
const DefaultLease = time.Minute
