package domain

import (
	"fmt"
	"time"
)

// Unranked is the sentinel tier/rank for queues the player has no entry in.
const Unranked = "unranked"

// PlayerIdentity is the summoner-v4 slice of a fetch. Built fresh on every
// fetch, never merged with earlier rows for the same player.
type PlayerIdentity struct {
	Puuid         string
	SummonerID    string
	AccountID     string
	SummonerName  string
	ProfileIconID int
	RevisionDate  int64
	SummonerLevel int
}

// QueueStanding is the ranked standing in a single queue.
type QueueStanding struct {
	Tier   string
	Rank   string
	Wins   int
	Losses int
}

// RankedStanding holds the two ranked queues tracked per fetch. Queues the
// player has no entry for stay at the unranked default.
type RankedStanding struct {
	SoloDuo QueueStanding
	Flex    QueueStanding
}

func DefaultStanding() RankedStanding {
	return RankedStanding{
		SoloDuo: QueueStanding{Tier: Unranked, Rank: Unranked},
		Flex:    QueueStanding{Tier: Unranked, Rank: Unranked},
	}
}

// MatchWindowCounters breaks the trailing-window match history out by queue
// category. WalkablePool carries the ids eligible to seed the next hop; it is
// never persisted, only handed to the walk controller.
type MatchWindowCounters struct {
	Total      int
	Normal     int
	Draft      int
	RankedSolo int
	RankedFlex int
	ARAM       int

	// Total minus the named categories. Can go negative when the upstream
	// lists are mutually inconsistent; stored as reported.
	Other int

	WalkablePool []string
}

// PlayerRecord is the unit of persistence, one row per fetch.
type PlayerRecord struct {
	FetchedAt time.Time
	Server    string
	Identity  PlayerIdentity
	Standing  RankedStanding
	Counters  MatchWindowCounters
}

// Validate rejects records with missing required fields. The persistence
// gateway refuses anything that fails this, so a partially built record can
// never reach the insert path.
func (r *PlayerRecord) Validate() error {
	switch {
	case r.FetchedAt.IsZero():
		return fmt.Errorf("player record missing fetch timestamp")
	case r.Server == "":
		return fmt.Errorf("player record missing server")
	case r.Identity.Puuid == "":
		return fmt.Errorf("player record missing puuid")
	case r.Identity.SummonerID == "":
		return fmt.Errorf("player record missing summoner id")
	case r.Identity.AccountID == "":
		return fmt.Errorf("player record missing account id")
	case r.Identity.SummonerName == "":
		return fmt.Errorf("player record missing summoner name")
	case r.Standing.SoloDuo.Tier == "" || r.Standing.SoloDuo.Rank == "":
		return fmt.Errorf("player record missing solo/duo standing")
	case r.Standing.Flex.Tier == "" || r.Standing.Flex.Rank == "":
		return fmt.Errorf("player record missing flex standing")
	}
	return nil
}

// StoredPlayer is the resumption slice of a persisted row.
type StoredPlayer struct {
	Server       string
	Puuid        string
	SummonerName string
}

// WalkContext is the state carried between walk steps: the player the walk
// currently sits on and the match pool sampled for the next hop.
type WalkContext struct {
	Server    string
	Puuid     string
	MatchPool []string
}

// Valid reports whether the context can seed a step. A context missing any
// piece must be rehydrated from the store before use.
func (c WalkContext) Valid() bool {
	return c.Server != "" && c.Puuid != "" && len(c.MatchPool) > 0
}
