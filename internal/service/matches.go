package service

import (
	"context"
	"fmt"
	"time"

	"lol-crawler/internal/api"
	"lol-crawler/internal/constants"
	"lol-crawler/internal/domain"

	"github.com/rs/zerolog"
)

type matchAPI interface {
	MatchIDsByPuuid(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error)
	MatchByID(ctx context.Context, region, matchID string) (*api.MatchResponse, error)
}

type MatchHistoryService struct {
	riot   matchAPI
	logger zerolog.Logger
	now    func() time.Time
}

func NewMatchHistoryService(riot *api.RiotClient, logger zerolog.Logger) *MatchHistoryService {
	return &MatchHistoryService{
		riot:   riot,
		logger: logger,
		now:    time.Now,
	}
}

// FetchMatchIDs pulls the full id list for one queue filter, paginating in
// pages of 100 inside the trailing 180-day window. A short page ends the
// scan, and the offset never passes 900, so a single filter yields at most
// ~1000 ids. Upstream errors propagate unretried; the walk controller owns
// recovery for this path.
func (s *MatchHistoryService) FetchMatchIDs(ctx context.Context, region, puuid string, queue int) ([]string, error) {
	windowStart := s.now().Add(-constants.MatchWindow).Unix()

	var ids []string
	start := 0
	for {
		page, err := s.riot.MatchIDsByPuuid(ctx, region, puuid, start, constants.MatchPageSize, queue, windowStart)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch match ids (queue %d): %w", queue, err)
		}
		ids = append(ids, page...)

		if len(page) >= constants.MatchLastPageThreshold && start < constants.MatchOffsetCap {
			start += len(page)
		} else {
			break
		}
	}

	s.logger.Debug().
		Str("region", region).
		Str("puuid", puuid).
		Int("queue", queue).
		Int("count", len(ids)).
		Msg("match ids fetched")

	return ids, nil
}

// Aggregate breaks the trailing window out by queue category with one id
// fetch per filter. "Other" is whatever the unfiltered count has beyond the
// named categories; when upstream lists disagree with each other it can go
// negative and is stored as computed. The walkable pool concatenates the
// five named lists without deduplication -- a match id cannot satisfy two
// mutually exclusive queue filters.
func (s *MatchHistoryService) Aggregate(ctx context.Context, region, puuid string) (*domain.MatchWindowCounters, error) {
	all, err := s.FetchMatchIDs(ctx, region, puuid, constants.QueueAll)
	if err != nil {
		return nil, err
	}
	normal, err := s.FetchMatchIDs(ctx, region, puuid, constants.QueueNormal)
	if err != nil {
		return nil, err
	}
	draft, err := s.FetchMatchIDs(ctx, region, puuid, constants.QueueDraft)
	if err != nil {
		return nil, err
	}
	solo, err := s.FetchMatchIDs(ctx, region, puuid, constants.QueueSolo)
	if err != nil {
		return nil, err
	}
	flex, err := s.FetchMatchIDs(ctx, region, puuid, constants.QueueFlex)
	if err != nil {
		return nil, err
	}
	aram, err := s.FetchMatchIDs(ctx, region, puuid, constants.QueueARAM)
	if err != nil {
		return nil, err
	}

	pool := make([]string, 0, len(normal)+len(draft)+len(solo)+len(flex)+len(aram))
	pool = append(pool, normal...)
	pool = append(pool, draft...)
	pool = append(pool, solo...)
	pool = append(pool, flex...)
	pool = append(pool, aram...)

	counters := &domain.MatchWindowCounters{
		Total:        len(all),
		Normal:       len(normal),
		Draft:        len(draft),
		RankedSolo:   len(solo),
		RankedFlex:   len(flex),
		ARAM:         len(aram),
		Other:        len(all) - len(normal) - len(draft) - len(solo) - len(flex) - len(aram),
		WalkablePool: pool,
	}

	s.logger.Debug().
		Str("puuid", puuid).
		Int("total", counters.Total).
		Int("other", counters.Other).
		Int("pool", len(counters.WalkablePool)).
		Msg("match window aggregated")

	return counters, nil
}

// MatchParticipants returns the puuids of everyone in one match.
func (s *MatchHistoryService) MatchParticipants(ctx context.Context, region, matchID string) ([]string, error) {
	match, err := s.riot.MatchByID(ctx, region, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}
	return match.Metadata.Participants, nil
}
