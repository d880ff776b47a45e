package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	IrisBaseURL string
	IrisWSURL   string
	IrisEgress  string
	IrisDryRun  bool

	BotPrefix string

	XUserID    string
	XUserEmail string
	XSessionID string

	RedisURL       string
	DatabaseURL    string
	SQLitePath     string
	ReplayCacheTTL time.Duration

	AllowedRooms []string

	ReviewViewTTL      time.Duration
	ReviewFetchTimeout time.Duration
	ReviewHistoryLimit int
	ReviewRatePerSec   float64

	ChessComBaseURL string
	ChessComTimeout time.Duration

	MessagesDir string
}

func defaults() *AppConfig {
	return &AppConfig{
		IrisEgress:         "auto",
		BotPrefix:          "!",
		ReplayCacheTTL:     30 * time.Minute,
		ReviewViewTTL:      20 * time.Minute,
		ReviewFetchTimeout: 5 * time.Second,
		ReviewHistoryLimit: 10,
		ReviewRatePerSec:   2,
		ChessComBaseURL:    "https://www.chess.com",
		ChessComTimeout:    10 * time.Second,
	}
}

// Load reads the chat bot configuration. The Iris endpoints and one game
// store are required.
func Load() (*AppConfig, error) {
	cfg := loadCommon()

	cfg.IrisBaseURL = strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
	cfg.IrisWSURL = strings.TrimSpace(os.Getenv("IRIS_WS_URL"))
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("IRIS_EGRESS"))); v != "" {
		cfg.IrisEgress = v
	}
	if v := strings.TrimSpace(os.Getenv("IRIS_DRYRUN")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.IrisDryRun = b
		}
	}

	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	switch cfg.IrisEgress {
	case "http", "ws", "auto":
	default:
		return nil, errors.New("IRIS_EGRESS must be http, ws or auto")
	}
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		return nil, errors.New("DATABASE_URL or SQLITE_PATH is required")
	}
	return cfg, nil
}

// LoadTUI reads the subset used by the terminal viewer. Nothing is required;
// the caller decides where games come from.
func LoadTUI() *AppConfig {
	return loadCommon()
}

func loadCommon() *AppConfig {
	cfg := defaults()

	if v := strings.TrimSpace(os.Getenv("BOT_PREFIX")); v != "" {
		cfg.BotPrefix = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.SQLitePath = strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XUserEmail = strings.TrimSpace(os.Getenv("X_USER_EMAIL"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ROOMS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.AllowedRooms = append(cfg.AllowedRooms, s)
			}
		}
	}

	durationEnv("REPLAY_CACHE_TTL", &cfg.ReplayCacheTTL)
	durationEnv("REVIEW_VIEW_TTL", &cfg.ReviewViewTTL)
	durationEnv("REVIEW_FETCH_TIMEOUT", &cfg.ReviewFetchTimeout)
	durationEnv("CHESSCOM_TIMEOUT", &cfg.ChessComTimeout)

	if v := strings.TrimSpace(os.Getenv("REVIEW_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReviewHistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REVIEW_RATE_PER_SEC")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.ReviewRatePerSec = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSCOM_BASE_URL")); v != "" {
		cfg.ChessComBaseURL = strings.TrimRight(v, "/")
	}
	return cfg
}

// durationEnv accepts Go durations ("90s", "20m") or whole seconds.
func durationEnv(key string, dst *time.Duration) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = time.Duration(n) * time.Second
	}
}

// IrisHeaders are sent with every bridge request and handshake.
func (c *AppConfig) IrisHeaders() map[string]string {
	h := map[string]string{}
	if c.XUserID != "" {
		h["X-User-Id"] = c.XUserID
	}
	if c.XUserEmail != "" {
		h["X-User-Email"] = c.XUserEmail
	}
	if c.XSessionID != "" {
		h["X-Session-Id"] = c.XSessionID
	}
	return h
}
