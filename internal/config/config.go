package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type key string

const (
	KeyLogger  = key("logger")
	KeyMetrics = key("metrics")
	KeyUUID    = key("uuid")
	KeyPremium = key("premium")
)

type Config struct {
	Service   Service
	Platform  Platform
	Logger    Logger
	Metrics   Metrics
	Postgres  Postgres
	Redis     Redis
	Kafka     Kafka
	Auth      Auth
	Push      Push
	Media     Media
	Limits    Limits
	Delivery  Delivery
	Retention Retention
}

type Service struct {
	Port string `env:"SERVICE_PORT" env-default:"8080"`
	Name string `env:"SERVICE_NAME" env-default:"group-chat-service"`
}

type Platform struct {
	Env string `env:"ENV" env-default:"dev"`
}

type Logger struct {
	Host string `env:"LOGGER_SERVICE_HOST"`
	Port string `env:"LOGGER_SERVICE_PORT"`
}

type Metrics struct {
	Host string `env:"GRAFANA_HOST"`
	Port int    `env:"GRAFANA_PORT"`
}

type Postgres struct {
	User     string `env:"CHAT_SERVICE_POSTGRES_USER"`
	Password string `env:"CHAT_SERVICE_POSTGRES_PASSWORD"`
	Database string `env:"CHAT_SERVICE_POSTGRES_DB"`
	Host     string `env:"CHAT_SERVICE_POSTGRES_HOST"`
	Port     string `env:"CHAT_SERVICE_POSTGRES_PORT"`
}

type Redis struct {
	Address  string `env:"CHAT_SERVICE_REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `env:"CHAT_SERVICE_REDIS_PASSWORD"`
	DB       int    `env:"CHAT_SERVICE_REDIS_DB" env-default:"0"`
}

type Kafka struct {
	Host            string `env:"KAFKA_HOST"`
	Port            string `env:"KAFKA_PORT"`
	MembershipTopic string `env:"GROUP_MEMBERSHIP_TOPIC" env-default:"group-membership"`
}

type Auth struct {
	AccessSecret  string        `env:"AUTH_ACCESS_SECRET"`
	ConnectSecret string        `env:"AUTH_CONNECT_SECRET"`
	ConnectTTL    time.Duration `env:"AUTH_CONNECT_TTL" env-default:"30m"`
}

type Push struct {
	BaseURL string        `env:"PUSH_GATEWAY_URL"`
	APIKey  string        `env:"PUSH_GATEWAY_API_KEY"`
	Timeout time.Duration `env:"PUSH_GATEWAY_TIMEOUT" env-default:"5s"`
}

type Media struct {
	Region        string `env:"MEDIA_S3_REGION" env-default:"eu-central-1"`
	Bucket        string `env:"MEDIA_S3_BUCKET"`
	Endpoint      string `env:"MEDIA_S3_ENDPOINT"`
	PublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL"`
	MaxImageBytes int64  `env:"MEDIA_MAX_IMAGE_BYTES" env-default:"10485760"`
	MaxVoiceBytes int64  `env:"MEDIA_MAX_VOICE_BYTES" env-default:"20971520"`
	MaxVideoBytes int64  `env:"MEDIA_MAX_VIDEO_BYTES" env-default:"104857600"`
	MaxDocBytes   int64  `env:"MEDIA_MAX_DOCUMENT_BYTES" env-default:"26214400"`
}

type Limits struct {
	MaxSessionsPerUser int           `env:"LIMIT_MAX_SESSIONS_PER_USER" env-default:"5"`
	SendBudget         int           `env:"LIMIT_SEND_BUDGET" env-default:"30"`
	TypingBudget       int           `env:"LIMIT_TYPING_BUDGET" env-default:"60"`
	ReactionBudget     int           `env:"LIMIT_REACTION_BUDGET" env-default:"60"`
	RateWindow         time.Duration `env:"LIMIT_RATE_WINDOW" env-default:"60s"`
	EditWindow         time.Duration `env:"LIMIT_EDIT_WINDOW" env-default:"15m"`
	HeartbeatTimeout   time.Duration `env:"LIMIT_HEARTBEAT_TIMEOUT" env-default:"60s"`
	PersistTimeout     time.Duration `env:"LIMIT_PERSIST_TIMEOUT" env-default:"5s"`
	TypingTTL          time.Duration `env:"LIMIT_TYPING_TTL" env-default:"10s"`
	HandshakeRPS       float64       `env:"LIMIT_HANDSHAKE_RPS" env-default:"2"`
	HandshakeBurst     int           `env:"LIMIT_HANDSHAKE_BURST" env-default:"10"`
}

type Delivery struct {
	SweepInterval time.Duration `env:"DELIVERY_SWEEP_INTERVAL" env-default:"30s"`
	MaxAttempts   int           `env:"DELIVERY_MAX_ATTEMPTS" env-default:"3"`
	Backoff       string        `env:"DELIVERY_BACKOFF" env-default:"1m,5m,30m"`
	BatchSize     int           `env:"DELIVERY_BATCH_SIZE" env-default:"200"`
	ExpireAfter   time.Duration `env:"DELIVERY_EXPIRE_AFTER" env-default:"24h"`
}

type Retention struct {
	Cron       string        `env:"RETENTION_CRON" env-default:"0 3 * * *"`
	DeletedTTL time.Duration `env:"RETENTION_DELETED_TTL" env-default:"720h"`
	AuditTTL   time.Duration `env:"RETENTION_AUDIT_TTL" env-default:"336h"`
}

func MustLoad() *Config {
	cfg := &Config{}
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		log.Fatalf("failed to read env variables: %s", err)
	}

	return cfg
}

// BackoffSchedule parses the comma separated retry delays.
func (d Delivery) BackoffSchedule() ([]time.Duration, error) {
	parts := strings.Split(d.Backoff, ",")
	schedule := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		delay, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse backoff %q: %w", p, err)
		}
		schedule = append(schedule, delay)
	}
	if len(schedule) == 0 {
		return nil, fmt.Errorf("backoff schedule is empty")
	}
	return schedule, nil
}
