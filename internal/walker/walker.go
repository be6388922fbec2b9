package walker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"lol-crawler/internal/config"
	"lol-crawler/internal/constants"
	"lol-crawler/internal/domain"
	"lol-crawler/internal/region"
	"lol-crawler/internal/repository"
	"lol-crawler/internal/service"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RecordBuilder interface {
	Build(ctx context.Context, server, puuid string) (*domain.PlayerRecord, error)
}

type RecordStore interface {
	Append(ctx context.Context, record *domain.PlayerRecord) error
	FetchRecent(ctx context.Context, n int) (*domain.StoredPlayer, error)
	Count(ctx context.Context) (int64, error)
}

type MatchSource interface {
	Aggregate(ctx context.Context, region, puuid string) (*domain.MatchWindowCounters, error)
	MatchParticipants(ctx context.Context, region, matchID string) ([]string, error)
}

// Walker drives the random walk: sample a match from the current player's
// pool, sample a co-participant, fetch and persist that player, carry the
// new context forward. Any step failure falls back to rehydrating the
// context from the most recent stored rows after a long pause.
type Walker struct {
	builder RecordBuilder
	store   RecordStore
	matches MatchSource
	logger  zerolog.Logger
	rng     *rand.Rand

	retryDelay time.Duration
	seed       *domain.StoredPlayer
	sessionID  string
}

func New(
	builder *service.RecordBuilder,
	store *repository.PlayerRecordRepository,
	matches *service.MatchHistoryService,
	cfg *config.Config,
	logger zerolog.Logger,
) (*Walker, error) {
	sessionID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	w := &Walker{
		builder:    builder,
		store:      store,
		matches:    matches,
		logger:     logger.With().Str("session", sessionID).Logger(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		retryDelay: constants.WalkRetryDelay,
		sessionID:  sessionID,
	}
	if cfg.SeedServer != "" && cfg.SeedPuuid != "" {
		w.seed = &domain.StoredPlayer{Server: cfg.SeedServer, Puuid: cfg.SeedPuuid}
	}
	return w, nil
}

// Run loops walk steps until the context is canceled. There is no attempt
// cap: every failure class short of cancellation pauses, bumps the
// rehydration depth, and tries again from storage.
func (w *Walker) Run(ctx context.Context) error {
	wctx := domain.WalkContext{}
	attempt := 1

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info().Msg("walk interrupted, exiting")
			return err
		}

		next, err := w.Step(ctx, wctx, attempt)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info().Msg("walk interrupted, exiting")
				return ctx.Err()
			}
			w.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("retry_in", w.retryDelay).
				Msg("walk step failed, will rehydrate from store")
			attempt++
			wctx = domain.WalkContext{}
			wait(ctx, w.retryDelay)
			continue
		}

		attempt = 1
		wctx = next
	}
}

// Step performs one hop. An invalid context is first rehydrated from the
// store at the given recency depth. On success the returned context seeds
// the next step.
func (w *Walker) Step(ctx context.Context, wctx domain.WalkContext, attempt int) (domain.WalkContext, error) {
	if !wctx.Valid() {
		var err error
		wctx, err = w.rehydrate(ctx, attempt)
		if err != nil {
			return domain.WalkContext{}, err
		}
	}

	routing, err := region.For(wctx.Server)
	if err != nil {
		return domain.WalkContext{}, err
	}

	matchID := wctx.MatchPool[w.rng.Intn(len(wctx.MatchPool))]
	participants, err := w.matches.MatchParticipants(ctx, routing, matchID)
	if err != nil {
		return domain.WalkContext{}, err
	}

	candidate, err := w.pickParticipant(participants, wctx.Puuid)
	if err != nil {
		return domain.WalkContext{}, fmt.Errorf("match %s: %w", matchID, err)
	}

	record, err := w.builder.Build(ctx, wctx.Server, candidate)
	if err != nil {
		return domain.WalkContext{}, err
	}

	if err := w.store.Append(ctx, record); err != nil {
		return domain.WalkContext{}, err
	}

	total, err := w.store.Count(ctx)
	if err != nil {
		total = -1
	}
	w.logger.Info().
		Str("summoner", record.Identity.SummonerName).
		Str("server", record.Server).
		Int("pool", len(record.Counters.WalkablePool)).
		Int64("stored_total", total).
		Msg("player record inserted")

	return domain.WalkContext{
		Server:    record.Server,
		Puuid:     record.Identity.Puuid,
		MatchPool: record.Counters.WalkablePool,
	}, nil
}

// rehydrate rebuilds a walk context from the nth most recent stored row,
// backing further into history the longer failures persist. The match pool
// is re-derived with a fresh aggregate since pools are never persisted.
func (w *Walker) rehydrate(ctx context.Context, attempt int) (domain.WalkContext, error) {
	stored, err := w.store.FetchRecent(ctx, attempt)
	if errors.Is(err, repository.ErrNoRecords) && attempt == 1 && w.seed != nil {
		w.logger.Info().
			Str("server", w.seed.Server).
			Str("puuid", w.seed.Puuid).
			Msg("store is empty, starting walk from configured seed")
		stored, err = w.seed, nil
	}
	if err != nil {
		return domain.WalkContext{}, fmt.Errorf("rehydration failed: %w", err)
	}

	w.logger.Info().
		Int("position", attempt).
		Str("server", stored.Server).
		Str("summoner", stored.SummonerName).
		Msg("rehydrating walk context from store")

	routing, err := region.For(stored.Server)
	if err != nil {
		return domain.WalkContext{}, err
	}

	counters, err := w.matches.Aggregate(ctx, routing, stored.Puuid)
	if err != nil {
		return domain.WalkContext{}, err
	}
	if len(counters.WalkablePool) == 0 {
		return domain.WalkContext{}, fmt.Errorf("rehydrated player %s has an empty walkable pool", stored.Puuid)
	}

	return domain.WalkContext{
		Server:    stored.Server,
		Puuid:     stored.Puuid,
		MatchPool: counters.WalkablePool,
	}, nil
}

// pickParticipant rejection-samples a participant different from the current
// player. Draws are bounded so a degenerate participant list fails the step
// instead of spinning forever.
func (w *Walker) pickParticipant(participants []string, current string) (string, error) {
	if len(participants) == 0 {
		return "", fmt.Errorf("participant list is empty")
	}
	for i := 0; i < constants.MaxParticipantDraws; i++ {
		candidate := participants[w.rng.Intn(len(participants))]
		if candidate != current {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no participant other than current player after %d draws", constants.MaxParticipantDraws)
}

func wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
