package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/poll-ledger/models"
	"github.com/danielhkuo/poll-ledger/record"
	"github.com/danielhkuo/poll-ledger/store"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	IdentitySalt string
	ClosePolicy  string
	LogLevel     string
	Limits       record.Limits
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string
	defaults := record.DefaultLimits()

	flags := flag.NewFlagSet("poll-ledger", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (leveldb: directory)")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres, leveldb or memory)")
	flags.StringVar(&envFile, "env", ".env", "Environment file loaded before reading env variables")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.IdentitySalt, "identity-salt", "", "Identity token salt (prefer env)")

	// Ledger policy
	flags.StringVar(&cfg.ClosePolicy, "close-policy", "", "What closing a poll does (flag or release)")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.IntVar(&cfg.Limits.MaxQuestionLen, "max-question", 0, "Maximum question length in bytes")
	flags.IntVar(&cfg.Limits.MaxCandidates, "max-candidates", 0, "Maximum candidates per poll")
	flags.IntVar(&cfg.Limits.MaxCandidateLen, "max-candidate-len", 0, "Maximum candidate name length in bytes")
	flags.IntVar(&cfg.Limits.MaxVoters, "max-voters", 0, "Maximum voters per poll")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// Values already in the environment win over the file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = store.TypeSQLite
		}
	}
	switch cfg.DatabaseType {
	case store.TypeSQLite, store.TypePostgres, store.TypeLevelDB, store.TypeMemory:
	default:
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != store.TypeMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.ClosePolicy == "" {
		cfg.ClosePolicy = os.Getenv("CLOSE_POLICY")
		if cfg.ClosePolicy == "" {
			cfg.ClosePolicy = models.ClosePolicyFlag
		}
	}
	if cfg.ClosePolicy != models.ClosePolicyFlag && cfg.ClosePolicy != models.ClosePolicyRelease {
		return Config{}, fmt.Errorf("unknown close policy %q", cfg.ClosePolicy)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
	}

	// Limits: flag, then env, then default
	cfg.Limits.MaxIDLen = defaults.MaxIDLen
	cfg.Limits.MaxIdentityLen = defaults.MaxIdentityLen
	limitVars := []struct {
		value    *int
		env      string
		fallback int
	}{
		{&cfg.Limits.MaxQuestionLen, "MAX_QUESTION_LEN", defaults.MaxQuestionLen},
		{&cfg.Limits.MaxCandidates, "MAX_CANDIDATES", defaults.MaxCandidates},
		{&cfg.Limits.MaxCandidateLen, "MAX_CANDIDATE_LEN", defaults.MaxCandidateLen},
		{&cfg.Limits.MaxVoters, "MAX_VOTERS", defaults.MaxVoters},
	}
	for _, lv := range limitVars {
		if *lv.value != 0 {
			continue
		}
		v, err := envInt(lv.env, lv.fallback)
		if err != nil {
			return Config{}, err
		}
		*lv.value = v
	}
	if err := cfg.Limits.Validate(); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	if cfg.IdentitySalt == "" {
		cfg.IdentitySalt = os.Getenv("IDENTITY_SALT")
	}
	if cfg.IdentitySalt == "" {
		return Config{}, errors.New("IDENTITY_SALT required")
	}

	return cfg, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", name)
	}
	return v, nil
}
