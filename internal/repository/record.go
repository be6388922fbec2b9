package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lol-crawler/internal/constants"
	"lol-crawler/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// ErrNoRecords means the recency read ran past the stored rows (or the table
// is empty). Distinct from ErrUnavailable so the walker can fall back to its
// configured seed on a fresh database.
var ErrNoRecords = errors.New("no player records stored")

// ErrUnavailable wraps store-layer failures on the read path. Reads are not
// retried here; the walker owns recovery for that path.
var ErrUnavailable = errors.New("store unavailable")

type PlayerRecordRepository struct {
	db     *sql.DB
	logger zerolog.Logger

	insertRetryDelay time.Duration
}

func NewPlayerRecordRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRecordRepository {
	return &PlayerRecordRepository{
		db:               sqlDB,
		logger:           logger,
		insertRetryDelay: constants.InsertRetryDelay,
	}
}

// Append inserts one fully built record. Store failures are retried on a
// constant delay without an attempt cap: losing a fetched record is worse
// than a stalled process. Only a record failing validation, or a canceled
// context, gets out of here without an inserted row.
func (r *PlayerRecordRepository) Append(ctx context.Context, record *domain.PlayerRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("refusing to insert: %w", err)
	}

	backoff := retry.NewConstant(r.insertRetryDelay)
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.insert(ctx, record); err != nil {
			r.logger.Warn().
				Err(err).
				Str("puuid", record.Identity.Puuid).
				Dur("retry_in", r.insertRetryDelay).
				Msg("insert failed, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (r *PlayerRecordRepository) insert(ctx context.Context, record *domain.PlayerRecord) error {
	const query = `
		INSERT INTO player_records (
			requests_timestamp, server, summoner_name, puuid, account_id,
			summoner_id, profile_icon_id, revision_date, summoner_level,
			tier_solo_duo, rank_solo_duo, wins_solo_duo, losses_solo_duo,
			tier_flex, rank_flex, wins_flex, losses_flex,
			games_last_180_days, normal_last_180_days, draft_last_180_days,
			ranked_solo_last_180_days, ranked_flex_last_180_days,
			aram_last_180_days, other_last_180_days
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		record.FetchedAt.Unix(),
		record.Server,
		record.Identity.SummonerName,
		record.Identity.Puuid,
		record.Identity.AccountID,
		record.Identity.SummonerID,
		record.Identity.ProfileIconID,
		record.Identity.RevisionDate,
		record.Identity.SummonerLevel,
		record.Standing.SoloDuo.Tier,
		record.Standing.SoloDuo.Rank,
		record.Standing.SoloDuo.Wins,
		record.Standing.SoloDuo.Losses,
		record.Standing.Flex.Tier,
		record.Standing.Flex.Rank,
		record.Standing.Flex.Wins,
		record.Standing.Flex.Losses,
		record.Counters.Total,
		record.Counters.Normal,
		record.Counters.Draft,
		record.Counters.RankedSolo,
		record.Counters.RankedFlex,
		record.Counters.ARAM,
		record.Counters.Other,
	)
	return err
}

// FetchRecent returns the nth most recently inserted player, counting from 1
// at the newest row. Rehydration asks for progressively older rows when the
// newest ones keep failing to seed a step.
func (r *PlayerRecordRepository) FetchRecent(ctx context.Context, n int) (*domain.StoredPlayer, error) {
	if n < 1 {
		n = 1
	}

	const query = `
		SELECT server, puuid, summoner_name
		FROM player_records
		ORDER BY id DESC
		LIMIT 1 OFFSET ?`

	var stored domain.StoredPlayer
	err := r.db.QueryRowContext(ctx, query, n-1).
		Scan(&stored.Server, &stored.Puuid, &stored.SummonerName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (position %d)", ErrNoRecords, n)
	}
	if err != nil {
		r.logger.Error().Err(err).Int("position", n).Msg("failed to fetch recent player")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &stored, nil
}

// Count reports the number of stored rows. Used for progress logging.
func (r *PlayerRecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM player_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count, nil
}
