package domain

import (
	"strings"
	"testing"
	"time"
)

func validRecord() *PlayerRecord {
	return &PlayerRecord{
		FetchedAt: time.Unix(1700000000, 0),
		Server:    "EUN1",
		Identity: PlayerIdentity{
			Puuid:         "puuid-1",
			SummonerID:    "summoner-1",
			AccountID:     "account-1",
			SummonerName:  "TestSummoner",
			ProfileIconID: 512,
			RevisionDate:  1699999999000,
			SummonerLevel: 132,
		},
		Standing: DefaultStanding(),
		Counters: MatchWindowCounters{Total: 10, Normal: 4, Other: 6},
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PlayerRecord)
		want   string
	}{
		{"zero timestamp", func(r *PlayerRecord) { r.FetchedAt = time.Time{} }, "timestamp"},
		{"empty server", func(r *PlayerRecord) { r.Server = "" }, "server"},
		{"empty puuid", func(r *PlayerRecord) { r.Identity.Puuid = "" }, "puuid"},
		{"empty summoner id", func(r *PlayerRecord) { r.Identity.SummonerID = "" }, "summoner id"},
		{"empty account id", func(r *PlayerRecord) { r.Identity.AccountID = "" }, "account id"},
		{"empty name", func(r *PlayerRecord) { r.Identity.SummonerName = "" }, "summoner name"},
		{"empty solo tier", func(r *PlayerRecord) { r.Standing.SoloDuo.Tier = "" }, "solo/duo"},
		{"empty flex rank", func(r *PlayerRecord) { r.Standing.Flex.Rank = "" }, "flex"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := validRecord()
			tc.mutate(record)
			err := record.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestWalkContextValid(t *testing.T) {
	full := WalkContext{Server: "EUN1", Puuid: "p1", MatchPool: []string{"EUN1_1"}}
	if !full.Valid() {
		t.Error("expected populated context to be valid")
	}

	invalid := []WalkContext{
		{},
		{Server: "EUN1", Puuid: "p1"},
		{Server: "EUN1", MatchPool: []string{"EUN1_1"}},
		{Puuid: "p1", MatchPool: []string{"EUN1_1"}},
	}
	for i, c := range invalid {
		if c.Valid() {
			t.Errorf("case %d: expected invalid context", i)
		}
	}
}
