package config

import (
	"fmt"
	"time"

	"delliapp/models"

	"github.com/caarlos0/env/v10"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"delli.db"`

	RedisAddr     string `env:"REDIS_ADDR"` // empty keeps cache and realtime in memory
	RedisPassword string `env:"REDIS_PASSWORD"`
	AMQPURL       string `env:"AMQP_URL"` // empty disables outbound events
	AMQPExchange  string `env:"AMQP_EXCHANGE" envDefault:"delli.events"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"delli_dev_secret_change_me"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	RootDomain    string        `env:"ROOT_DOMAIN" envDefault:"delliapp.com.br"`
	AdminLabel    string        `env:"ADMIN_LABEL" envDefault:"app"`
	GuardCooldown time.Duration `env:"GUARD_COOLDOWN" envDefault:"2s"`
	TeamCacheTTL  time.Duration `env:"TEAM_CACHE_TTL" envDefault:"60s"`

	FunctionsURL string `env:"FUNCTIONS_URL" envDefault:"http://localhost:54321/functions/v1"`
	FunctionsKey string `env:"FUNCTIONS_KEY"`

	StorageDir    string `env:"STORAGE_DIR" envDefault:"storage"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	OTPTTL        time.Duration `env:"OTP_TTL" envDefault:"10m"`
	OTPRatePerMin int           `env:"OTP_RATE_PER_MIN" envDefault:"3"`
}

// Load reads configuration from the environment, after a best-effort .env load.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// OpenDB connects to the configured database.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.DBDSN})
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// setCurrentTeamFn installs the session RPC used for row-level filtering.
const setCurrentTeamFn = `CREATE OR REPLACE FUNCTION set_current_team_id(team_id text) RETURNS void AS $$
	SELECT set_config('app.current_team_id', team_id, false);
$$ LANGUAGE sql`

// Migrate creates or updates all tables and, on postgres, the session RPC.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}
	if db.Dialector.Name() == DriverPostgres {
		if err := db.Exec(setCurrentTeamFn).Error; err != nil {
			return fmt.Errorf("install set_current_team_id: %w", err)
		}
	}
	return nil
}
