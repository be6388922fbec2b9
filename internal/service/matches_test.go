package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"lol-crawler/internal/api"
	"lol-crawler/internal/constants"

	"github.com/rs/zerolog"
)

func testMatchService(riot matchAPI, now time.Time) *MatchHistoryService {
	return &MatchHistoryService{
		riot:   riot,
		logger: zerolog.Nop(),
		now:    func() time.Time { return now },
	}
}

func idPage(prefix string, start, n int) []string {
	page := make([]string, n)
	for i := range page {
		page[i] = fmt.Sprintf("%s_%d", prefix, start+i)
	}
	return page
}

func TestFetchMatchIDsStopsOnShortPage(t *testing.T) {
	var offsets []int
	mock := &mockRiotAPI{
		MatchIDsByPuuidFunc: func(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
			offsets = append(offsets, start)
			if start == 0 {
				return idPage("EUN1", 0, 100), nil
			}
			return idPage("EUN1", start, 37), nil
		},
	}

	ids, err := testMatchService(mock, time.Now()).FetchMatchIDs(context.Background(), "EUROPE", "p1", constants.QueueNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 137 {
		t.Errorf("expected 137 ids, got %d", len(ids))
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 100 {
		t.Errorf("unexpected pagination offsets: %v", offsets)
	}
}

func TestFetchMatchIDsHonorsOffsetCap(t *testing.T) {
	var offsets []int
	mock := &mockRiotAPI{
		MatchIDsByPuuidFunc: func(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
			offsets = append(offsets, start)
			// Upstream with endless full pages.
			return idPage("EUN1", start, 100), nil
		},
	}

	ids, err := testMatchService(mock, time.Now()).FetchMatchIDs(context.Background(), "EUROPE", "p1", constants.QueueAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1000 {
		t.Errorf("expected the fetch to cap at 1000 ids, got %d", len(ids))
	}
	last := offsets[len(offsets)-1]
	if last > constants.MatchOffsetCap {
		t.Errorf("queried past the offset cap: %d", last)
	}
}

func TestFetchMatchIDsBoundsWindowTo180Days(t *testing.T) {
	now := time.Unix(1700000000, 0)
	var gotStartTime int64
	mock := &mockRiotAPI{
		MatchIDsByPuuidFunc: func(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
			gotStartTime = startTime
			return nil, nil
		},
	}

	if _, err := testMatchService(mock, now).FetchMatchIDs(context.Background(), "EUROPE", "p1", constants.QueueAll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := now.Add(-constants.MatchWindow).Unix()
	if gotStartTime != want {
		t.Errorf("window start = %d, want %d", gotStartTime, want)
	}
}

func TestFetchMatchIDsPropagatesUpstreamError(t *testing.T) {
	calls := 0
	mock := &mockRiotAPI{
		MatchIDsByPuuidFunc: func(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
			calls++
			return nil, &api.StatusError{Code: 429}
		},
	}

	_, err := testMatchService(mock, time.Now()).FetchMatchIDs(context.Background(), "EUROPE", "p1", constants.QueueAll)
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected upstream error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Errorf("match id fetch must not retry, got %d attempts", calls)
	}
}

func TestAggregateCountsAndPool(t *testing.T) {
	mock := &mockRiotAPI{
		MatchIDsByPuuidFunc: func(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
			switch queue {
			case constants.QueueAll:
				return idPage("ALL", 0, 50), nil
			case constants.QueueNormal:
				return idPage("NORM", 0, 50), nil
			default:
				return nil, nil
			}
		},
	}

	counters, err := testMatchService(mock, time.Now()).Aggregate(context.Background(), "EUROPE", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counters.Total != 50 {
		t.Errorf("total = %d, want 50", counters.Total)
	}
	if counters.Normal != 50 {
		t.Errorf("normal = %d, want 50", counters.Normal)
	}
	if counters.Other != 0 {
		t.Errorf("other = %d, want 0", counters.Other)
	}
	if len(counters.WalkablePool) != 50 {
		t.Errorf("pool length = %d, want 50", len(counters.WalkablePool))
	}
}

func TestAggregatePoolLengthMatchesNamedCounts(t *testing.T) {
	mock := &mockRiotAPI{
		MatchIDsByPuuidFunc: func(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
			switch queue {
			case constants.QueueAll:
				return idPage("ALL", 0, 30), nil
			case constants.QueueNormal:
				return idPage("NORM", 0, 5), nil
			case constants.QueueDraft:
				return idPage("DRAFT", 0, 4), nil
			case constants.QueueSolo:
				return idPage("SOLO", 0, 8), nil
			case constants.QueueFlex:
				return idPage("FLEX", 0, 2), nil
			case constants.QueueARAM:
				return idPage("ARAM", 0, 6), nil
			}
			return nil, nil
		},
	}

	counters, err := testMatchService(mock, time.Now()).Aggregate(context.Background(), "EUROPE", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	named := counters.Normal + counters.Draft + counters.RankedSolo + counters.RankedFlex + counters.ARAM
	if len(counters.WalkablePool) != named {
		t.Errorf("pool length %d != named category sum %d", len(counters.WalkablePool), named)
	}
	if counters.Other != counters.Total-named {
		t.Errorf("other = %d, want %d", counters.Other, counters.Total-named)
	}
}

func TestAggregateToleratesNegativeOther(t *testing.T) {
	// Inconsistent upstream: the named lists overcount the unfiltered one.
	mock := &mockRiotAPI{
		MatchIDsByPuuidFunc: func(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
			if queue == constants.QueueAll {
				return idPage("ALL", 0, 10), nil
			}
			return idPage("Q", 0, 10), nil
		},
	}

	counters, err := testMatchService(mock, time.Now()).Aggregate(context.Background(), "EUROPE", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counters.Other != -40 {
		t.Errorf("other = %d, want -40", counters.Other)
	}
}

func TestMatchParticipants(t *testing.T) {
	mock := &mockRiotAPI{
		MatchByIDFunc: func(ctx context.Context, region, matchID string) (*api.MatchResponse, error) {
			return &api.MatchResponse{
				Metadata: api.MatchMetadata{
					MatchID:      matchID,
					Participants: []string{"p1", "p2"},
				},
			}, nil
		},
	}

	participants, err := testMatchService(mock, time.Now()).MatchParticipants(context.Background(), "EUROPE", "EUN1_5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(participants) != 2 {
		t.Errorf("expected 2 participants, got %v", participants)
	}
}
