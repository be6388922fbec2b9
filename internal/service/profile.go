package service

import (
	"context"
	"errors"
	"time"

	"lol-crawler/internal/api"
	"lol-crawler/internal/constants"
	"lol-crawler/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

type summonerAPI interface {
	SummonerByPuuid(ctx context.Context, server, puuid string) (*api.SummonerResponse, error)
	LeagueEntriesBySummoner(ctx context.Context, server, summonerID string) ([]api.LeagueEntry, error)
}

type ProfileService struct {
	riot   summonerAPI
	logger zerolog.Logger

	retryDelay   time.Duration
	failureDelay time.Duration
}

func NewProfileService(riot *api.RiotClient, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		riot:         riot,
		logger:       logger,
		retryDelay:   constants.ProfileRetryDelay,
		failureDelay: constants.StandingFailureDelay,
	}
}

// FetchProfile looks a summoner up by puuid. Transient upstream failures are
// retried on a constant delay without an attempt cap, so the only ways out
// are a fetched identity, api.ErrNotFound, or a canceled context. Callers
// treat ErrNotFound as "skip this player", not as a failure.
func (s *ProfileService) FetchProfile(ctx context.Context, server, puuid string) (*domain.PlayerIdentity, error) {
	var summoner *api.SummonerResponse

	backoff := retry.NewConstant(s.retryDelay)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		summoner, err = s.riot.SummonerByPuuid(ctx, server, puuid)
		if errors.Is(err, api.ErrNotFound) {
			s.logger.Info().
				Str("server", server).
				Str("puuid", puuid).
				Msg("no summoner with that puuid on that server")
			return err
		}
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("server", server).
				Dur("retry_in", s.retryDelay).
				Msg("summoner lookup failed, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.PlayerIdentity{
		Puuid:         summoner.Puuid,
		SummonerID:    summoner.ID,
		AccountID:     summoner.AccountID,
		SummonerName:  summoner.Name,
		ProfileIconID: summoner.ProfileIconID,
		RevisionDate:  summoner.RevisionDate,
		SummonerLevel: summoner.SummonerLevel,
	}, nil
}

// FetchStanding looks ranked league entries up by summoner id. Unlike the
// profile lookup this is tried once: a transient failure logs, pauses, and
// yields the unranked default instead of retrying.
func (s *ProfileService) FetchStanding(ctx context.Context, server, summonerID string) domain.RankedStanding {
	standing := domain.DefaultStanding()

	entries, err := s.riot.LeagueEntriesBySummoner(ctx, server, summonerID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("server", server).
			Str("summoner_id", summonerID).
			Msg("league lookup failed, falling back to unranked standing")
		wait(ctx, s.failureDelay)
		return standing
	}

	for _, entry := range entries {
		queue := domain.QueueStanding{
			Tier:   entry.Tier,
			Rank:   entry.Rank,
			Wins:   entry.Wins,
			Losses: entry.Losses,
		}
		switch entry.QueueType {
		case api.QueueTypeSoloDuo:
			standing.SoloDuo = queue
		case api.QueueTypeFlex:
			standing.Flex = queue
		}
	}

	return standing
}

func wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
