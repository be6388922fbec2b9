package region

import (
	"errors"
	"fmt"
)

// ErrUnknownServer is returned for server codes outside the routing table.
var ErrUnknownServer = errors.New("unknown server")

// Platform servers (summoner-v4, league-v4) mapped to the routing regions
// match-v5 queries are issued against.
var apiRegions = map[string]string{
	"BR1":  "AMERICAS",
	"EUN1": "EUROPE",
	"EUW1": "EUROPE",
	"JP1":  "ASIA",
	"KR":   "ASIA",
	"LA1":  "AMERICAS",
	"LA2":  "AMERICAS",
	"NA1":  "AMERICAS",
	"OC1":  "AMERICAS",
	"RU":   "EUROPE",
	"TR1":  "EUROPE",
}

// For resolves the routing region for a platform server code. Server codes
// read back from the store are always valid, but the table is still consulted
// on every call that needs a region.
func For(server string) (string, error) {
	region, ok := apiRegions[server]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownServer, server)
	}
	return region, nil
}

// Servers returns every known platform server code.
func Servers() []string {
	servers := make([]string, 0, len(apiRegions))
	for server := range apiRegions {
		servers = append(servers, server)
	}
	return servers
}
