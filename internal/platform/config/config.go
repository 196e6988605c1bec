package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	Admin         AdminConfig
	// CredentialContract is the account under which the credential store
	// itself is known to the other stores. The verification hub will only
	// accept proofs once this account is on its trusted issuer list.
	CredentialContract string
	Postgres           PostgresConfig
	Redis              RedisConfig
	Kafka              KafkaConfig
}

// AdminConfig names the administrator account for each store. A single
// operator account is the common deployment; per-store overrides allow
// splitting duties.
type AdminConfig struct {
	Identity     string
	Credential   string
	Verification string
	AccessPolicy string
}

type PostgresConfig struct {
	URL string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// IdentityCacheTTL bounds how long resolved identifiers may be served
	// from cache.
	IdentityCacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TRUSTGRAPH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("TRUSTGRAPH_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default, override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	admin := os.Getenv("TRUSTGRAPH_ADMIN_ACCOUNT")
	if admin == "" {
		admin = "admin"
	}

	var brokers []string
	if raw := os.Getenv("TRUSTGRAPH_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("TRUSTGRAPH_KAFKA_TOPIC")
	if topic == "" {
		topic = "trustgraph.audit"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		Admin: AdminConfig{
			Identity:     envOr("TRUSTGRAPH_ADMIN_IDENTITY", admin),
			Credential:   envOr("TRUSTGRAPH_ADMIN_CREDENTIAL", admin),
			Verification: envOr("TRUSTGRAPH_ADMIN_VERIFICATION", admin),
			AccessPolicy: envOr("TRUSTGRAPH_ADMIN_POLICY", admin),
		},
		CredentialContract: envOr("TRUSTGRAPH_CREDENTIAL_CONTRACT", "contract:credential-store"),
		Postgres: PostgresConfig{
			URL: os.Getenv("TRUSTGRAPH_POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL:              os.Getenv("TRUSTGRAPH_REDIS_URL"),
			PoolSize:         envInt("TRUSTGRAPH_REDIS_POOL_SIZE", 10),
			MinIdleConns:     envInt("TRUSTGRAPH_REDIS_MIN_IDLE", 2),
			DialTimeout:      5 * time.Second,
			ReadTimeout:      3 * time.Second,
			WriteTimeout:     3 * time.Second,
			IdentityCacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
