package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"lol-crawler/internal/config"

	"github.com/valyala/fasthttp"
)

// ErrNotFound maps upstream 404s. For summoner lookups this is an expected
// outcome (puuid unknown on that server), not a transient failure.
var ErrNotFound = errors.New("not found upstream")

// StatusError is any non-200, non-404 upstream response. Callers decide per
// operation whether it is worth retrying.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d (%s)", e.Code, e.URL)
}

type RiotClient struct {
	apiKey      string
	baseURL     string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

// RateLimitInfo mirrors the app-level rate limit headers Riot attaches to
// every response. Informational only; the crawler paces itself by sleeping.
type RateLimitInfo struct {
	Limit      string    `json:"limit"`
	Count      string    `json:"count"`
	RetryAfter int       `json:"retry_after"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Option func(*RiotClient)

// WithBaseURL overrides the host template, "%s" standing in for the server
// or region subdomain. Tests point this at a local server.
func WithBaseURL(base string) Option {
	return func(c *RiotClient) { c.baseURL = base }
}

func NewRiotClient(cfg *config.Config, opts ...Option) *RiotClient {
	c := &RiotClient{
		apiKey:  cfg.RiotAPIKey,
		baseURL: "https://%s.api.riotgames.com",
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-App-Rate-Limit")); limit != "" {
		c.rateLimit.Limit = limit
	}
	if count := string(resp.Header.Peek("X-App-Rate-Limit-Count")); count != "" {
		c.rateLimit.Count = count
	}
	if retryAfter := string(resp.Header.Peek("Retry-After")); retryAfter != "" {
		if val, err := strconv.Atoi(retryAfter); err == nil {
			c.rateLimit.RetryAfter = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *RiotClient) host(routing string) string {
	return fmt.Sprintf(c.baseURL, strings.ToLower(routing))
}

// SummonerByPuuid issues the summoner-v4 by-puuid lookup on a platform
// server. Returns ErrNotFound when no summoner has that puuid there.
func (c *RiotClient) SummonerByPuuid(ctx context.Context, server, puuid string) (*SummonerResponse, error) {
	url := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.host(server), puuid)
	return doRequest[SummonerResponse](ctx, c, url)
}

// LeagueEntriesBySummoner issues the league-v4 by-summoner lookup on a
// platform server. Players without ranked entries yield an empty slice.
func (c *RiotClient) LeagueEntriesBySummoner(ctx context.Context, server, summonerID string) ([]LeagueEntry, error) {
	url := fmt.Sprintf("%s/lol/league/v4/entries/by-summoner/%s", c.host(server), summonerID)
	entries, err := doRequest[[]LeagueEntry](ctx, c, url)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// MatchIDsByPuuid issues one page of the match-v5 id list on a routing
// region. queue <= 0 omits the queue constraint, startTime <= 0 the window.
func (c *RiotClient) MatchIDsByPuuid(ctx context.Context, region, puuid string, start, count, queue int, startTime int64) ([]string, error) {
	url := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?start=%d&count=%d",
		c.host(region), puuid, start, count)
	if queue > 0 {
		url += fmt.Sprintf("&queue=%d", queue)
	}
	if startTime > 0 {
		url += fmt.Sprintf("&startTime=%d", startTime)
	}
	ids, err := doRequest[[]string](ctx, c, url)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

// MatchByID issues the match-v5 detail lookup on a routing region.
func (c *RiotClient) MatchByID(ctx context.Context, region, matchID string) (*MatchResponse, error) {
	url := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.host(region), matchID)
	return doRequest[MatchResponse](ctx, c, url)
}

func doRequest[T any](ctx context.Context, client *RiotClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", client.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &StatusError{Code: resp.StatusCode(), URL: url}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type SummonerResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Puuid         string `json:"puuid"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int    `json:"summonerLevel"`
}

type LeagueEntry struct {
	LeagueID     string `json:"leagueId"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Veteran      bool   `json:"veteran"`
	Inactive     bool   `json:"inactive"`
	FreshBlood   bool   `json:"freshBlood"`
	HotStreak    bool   `json:"hotStreak"`
}

// Ranked queue identifiers as they appear in league-v4 entries.
const (
	QueueTypeSoloDuo = "RANKED_SOLO_5x5"
	QueueTypeFlex    = "RANKED_FLEX_SR"
)

type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	DataVersion  string   `json:"dataVersion"`
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	GameCreation       int64  `json:"gameCreation"`
	GameDuration       int    `json:"gameDuration"`
	GameStartTimestamp int64  `json:"gameStartTimestamp"`
	GameMode           string `json:"gameMode"`
	GameVersion        string `json:"gameVersion"`
	PlatformID         string `json:"platformId"`
	QueueID            int    `json:"queueId"`
}
