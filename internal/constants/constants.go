package constants

import "time"

const (
	// Delay between attempts of the indefinitely retried summoner lookup.
	ProfileRetryDelay = 5 * time.Second

	// League entries are only tried once; on a transient failure we pause
	// this long and fall back to an unranked standing.
	StandingFailureDelay = 5 * time.Second

	InsertRetryDelay = 10 * time.Second

	// Pause before rehydrating the walk from the store after a failed step.
	WalkRetryDelay = 120 * time.Second
)

const (
	// Match-history queries only cover matches started inside this trailing
	// window, computed at call time.
	MatchWindow = 180 * 24 * time.Hour

	MatchPageSize = 100

	// Pagination stops once the next offset would pass this, so at most
	// ~1000 ids are ever fetched per queue filter.
	MatchOffsetCap = 900

	// A page with fewer ids than this is treated as the last page.
	MatchLastPageThreshold = 99
)

// Riot queue ids for the filters the crawler breaks counters out by.
// Zero means no queue constraint upstream.
const (
	QueueAll    = 0
	QueueDraft  = 400
	QueueSolo   = 420
	QueueNormal = 430
	QueueFlex   = 440
	QueueARAM   = 450
)

const (
	// Draws before rejection sampling of the next participant gives up and
	// fails the step instead of spinning on a degenerate pool.
	MaxParticipantDraws = 100
)
