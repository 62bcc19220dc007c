package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	OpenAI   OpenAIConfig
	Exchange ExchangeConfig
	Telegram TelegramConfig
	Trading  TradingConfig
	News     NewsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"newsquant"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"newsquant"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"newsquant"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type OpenAIConfig struct {
	APIKey            string        `envconfig:"OPENAI_API_KEY" required:"true"`
	ChatModel         string        `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o"`
	EmbeddingModel    string        `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	RequestsPerMinute float64       `envconfig:"OPENAI_REQUESTS_PER_MINUTE" default:"60"`
	Timeout           time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
}

type ExchangeConfig struct {
	// BaseURL overrides the default Binance endpoint, mainly for tests.
	BaseURL string        `envconfig:"EXCHANGE_BASE_URL"`
	Timeout time.Duration `envconfig:"EXCHANGE_TIMEOUT" default:"10s"`
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

type TradingConfig struct {
	PortfolioFile string   `envconfig:"PORTFOLIO_FILE" default:"paper_portfolio.json"`
	InitialCash   float64  `envconfig:"INITIAL_CASH" default:"10000"`
	Symbols       []string `envconfig:"TRADING_SYMBOLS" default:"BTC/USDT,ETH/USDT,SOL/USDT"`
}

type NewsConfig struct {
	TopK          int     `envconfig:"NEWS_TOP_K" default:"3"`
	FetchLimit    int     `envconfig:"NEWS_FETCH_LIMIT" default:"20"`
	MinSimilarity float64 `envconfig:"NEWS_MIN_SIMILARITY" default:"0"`
}

// Load reads configuration from the environment, with an optional .env
// overlay for local development.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments configure the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	return &cfg, nil
}
