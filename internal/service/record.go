package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lol-crawler/internal/api"
	"lol-crawler/internal/domain"
	"lol-crawler/internal/region"

	"github.com/rs/zerolog"
)

// RecordBuilder composes one flat player record out of the profile, standing
// and match-window lookups.
type RecordBuilder struct {
	profiles *ProfileService
	matches  *MatchHistoryService
	logger   zerolog.Logger
	now      func() time.Time
}

func NewRecordBuilder(profiles *ProfileService, matches *MatchHistoryService, logger zerolog.Logger) *RecordBuilder {
	return &RecordBuilder{
		profiles: profiles,
		matches:  matches,
		logger:   logger,
		now:      time.Now,
	}
}

// Build fetches everything needed to persist one player. api.ErrNotFound
// from the profile lookup propagates as-is and means "skip this candidate";
// any other failure propagates untouched to the walk controller, which owns
// the top-level retry policy.
func (b *RecordBuilder) Build(ctx context.Context, server, puuid string) (*domain.PlayerRecord, error) {
	identity, err := b.profiles.FetchProfile(ctx, server, puuid)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			b.logger.Info().
				Str("server", server).
				Str("puuid", puuid).
				Msg("skipping candidate, profile not found")
		}
		return nil, err
	}

	standing := b.profiles.FetchStanding(ctx, server, identity.SummonerID)

	routing, err := region.For(server)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve region: %w", err)
	}

	counters, err := b.matches.Aggregate(ctx, routing, puuid)
	if err != nil {
		return nil, err
	}

	return &domain.PlayerRecord{
		FetchedAt: b.now(),
		Server:    server,
		Identity:  *identity,
		Standing:  standing,
		Counters:  *counters,
	}, nil
}
