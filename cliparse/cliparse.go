package cliparse

import (
	"errors"
	"flag"
	"fmt"
	iofs "io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/lunchpick/schedule"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	DatabaseName string
	JWTSecret    string
	TimeZone     string
	Deadline     string
	EnvFile      string

	// Derived from TimeZone and Deadline
	Window schedule.Window
}

// ParseFlags validates flags and fills the rest from the environment.
// Precedence: CLI flag, then process env, then the .env file.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("lunchpick", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or mongo)")
	fs.StringVar(&cfg.DatabaseName, "db-name", "", "Database name (mongo only)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Token signing secret (prefer env)")

	// Voting window
	fs.StringVar(&cfg.TimeZone, "tz", "", "IANA time zone for day boundaries (default Local)")
	fs.StringVar(&cfg.Deadline, "deadline", "", "Voting deadline as HH:MM (default 12:00)")

	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Dotenv file to load")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Real env vars win over the file
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if err := resolveDatabase(&cfg.DatabaseType, &cfg.DatabaseURL, &cfg.DatabaseName); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("AUTH_JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET required")
	}

	if cfg.TimeZone == "" {
		cfg.TimeZone = os.Getenv("TIMEZONE")
	}
	loc := time.Local
	if cfg.TimeZone != "" {
		l, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.TimeZone, err)
		}
		loc = l
	}

	if cfg.Deadline == "" {
		cfg.Deadline = os.Getenv("VOTING_DEADLINE")
	}
	window, err := schedule.NewWindow(loc, cfg.Deadline)
	if err != nil {
		return Config{}, err
	}
	cfg.Window = window

	return cfg, nil
}

// resolveDatabase fills unset database settings from the environment and
// applies the defaults
func resolveDatabase(dbType, url, name *string) error {
	if *dbType == "" {
		*dbType = os.Getenv("DATABASE_TYPE")
		if *dbType == "" {
			*dbType = "sqlite"
		}
	}
	switch *dbType {
	case "sqlite", "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE %q", *dbType)
	}

	if *url == "" {
		*url = os.Getenv("DATABASE_URL")
	}
	if *url == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if *name == "" {
		*name = os.Getenv("DATABASE_NAME")
		if *name == "" {
			*name = "lunchpick"
		}
	}
	return nil
}

// TokenConfig holds the options of the token subcommand
type TokenConfig struct {
	UserID    string
	Name      string
	TTL       time.Duration
	JWTSecret string
	EnvFile   string
}

// ParseTokenFlags parses `lunchpick token` arguments. The secret comes from
// the same places as the server's.
func ParseTokenFlags(args []string) (TokenConfig, error) {
	var cfg TokenConfig

	fs := flag.NewFlagSet("lunchpick token", flag.ContinueOnError)
	fs.StringVar(&cfg.UserID, "sub", "", "User id to issue the token for")
	fs.StringVar(&cfg.Name, "name", "", "Display name")
	fs.DurationVar(&cfg.TTL, "ttl", 12*time.Hour, "Token lifetime")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Token signing secret (prefer env)")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Dotenv file to load")

	if err := fs.Parse(args); err != nil {
		return TokenConfig{}, err
	}

	if cfg.UserID == "" {
		return TokenConfig{}, errors.New("-sub is required")
	}
	if cfg.TTL <= 0 {
		return TokenConfig{}, errors.New("-ttl must be positive")
	}

	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return TokenConfig{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("AUTH_JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return TokenConfig{}, errors.New("AUTH_JWT_SECRET required")
	}

	return cfg, nil
}

// AdminConfig holds the options of the admin subcommand
type AdminConfig struct {
	UserID       string
	Revoke       bool
	DatabaseURL  string
	DatabaseType string
	DatabaseName string
	EnvFile      string
}

// ParseAdminFlags parses `lunchpick admin -sub <user id> [-revoke]`.
// Database settings follow the same precedence as the server's.
func ParseAdminFlags(args []string) (AdminConfig, error) {
	var cfg AdminConfig

	fs := flag.NewFlagSet("lunchpick admin", flag.ContinueOnError)
	fs.StringVar(&cfg.UserID, "sub", "", "User id to change")
	fs.BoolVar(&cfg.Revoke, "revoke", false, "Remove the admin flag instead of granting it")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or mongo)")
	fs.StringVar(&cfg.DatabaseName, "db-name", "", "Database name (mongo only)")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Dotenv file to load")

	if err := fs.Parse(args); err != nil {
		return AdminConfig{}, err
	}

	if cfg.UserID == "" {
		return AdminConfig{}, errors.New("-sub is required")
	}

	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return AdminConfig{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	if err := resolveDatabase(&cfg.DatabaseType, &cfg.DatabaseURL, &cfg.DatabaseName); err != nil {
		return AdminConfig{}, err
	}
	return cfg, nil
}
