package jwt

import (
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	CUSTOMER_SECRET string
	AGENT_SECRET    string
	RedisClient     *redis.Client
)

const RefreshTokenTTL = 24 * 30 * time.Hour

const (
	RoleCustomer Role = iota
	RoleAgent
)

var RoleSecrets map[Role]string

// Configure sets the signing secrets and the refresh-token store. Called
// once from main before any token is issued; tests call it with throwaway
// secrets and a nil client.
func Configure(customerSecret, agentSecret string, redisClient *redis.Client) {
	CUSTOMER_SECRET = customerSecret
	AGENT_SECRET = agentSecret
	RedisClient = redisClient

	RoleSecrets = map[Role]string{
		RoleCustomer: CUSTOMER_SECRET,
		RoleAgent:    AGENT_SECRET,
	}
}
