// Package config handles loading and validating trade journal configuration
// from YAML files with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trade-journal/internal/engine"
	"trade-journal/internal/model"
)

// EnvConfigPath names the variable that points at the YAML file when no path is given.
const EnvConfigPath = "JOURNAL_CONFIG"

// Config is the root configuration structure for the trade journal.
type Config struct {
	App         AppConfig              `yaml:"app"`
	Log         LogConfig              `yaml:"log"`
	Evaluation  EvaluationConfig       `yaml:"evaluation"`
	Journal     JournalConfig          `yaml:"journal"`
	API         APIConfig              `yaml:"api"`
	Instruments []model.InstrumentSpec `yaml:"instruments"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"logLevel"`
}

// LogConfig configures the rotated log file.
type LogConfig struct {
	Dir        string `yaml:"dir"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
	Stdout     *bool  `yaml:"stdout"`
}

// ThresholdConfig holds the lower score bounds of the GOOD and AVERAGE verdicts.
type ThresholdConfig struct {
	Good    float64 `yaml:"good"`
	Average float64 `yaml:"average"`
}

// EvaluationConfig holds rule thresholds, penalties and verdict bounds.
// Zero values are replaced by defaults; map entries are merged key by key
// so a penalty may be set to zero explicitly.
type EvaluationConfig struct {
	MaxRiskPercent float64            `yaml:"maxRiskPercent"`
	MinRRRatio     float64            `yaml:"minRrRatio"`
	BaseScore      float64            `yaml:"baseScore"`
	Penalties      map[string]float64 `yaml:"penalties"`
	Trade          ThresholdConfig    `yaml:"trade"`
	Session        ThresholdConfig    `yaml:"session"`
	VerdictScores  map[string]float64 `yaml:"verdictScores"`
}

// JournalConfig holds journal store settings.
type JournalConfig struct {
	MaxEntriesPerSession int  `yaml:"maxEntriesPerSession"`
	RetentionHours       int  `yaml:"retentionHours"`
	PurgeIntervalMinutes int  `yaml:"purgeIntervalMinutes"`
	SeedDemo             bool `yaml:"seedDemo"`
}

// APIConfig holds REST API server settings.
type APIConfig struct {
	ListenAddress string `yaml:"listenAddress"`
	AllowedOrigin string `yaml:"allowedOrigin"`
}

// Load reads and parses a YAML configuration file, then applies a .env file
// from the working directory and JOURNAL_* environment overrides.
// An empty path falls back to $JOURNAL_CONFIG; with neither, only defaults
// and the environment are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("setting config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	_ = cfg.setDefaults()
	return &cfg
}

// setDefaults applies sensible defaults for optional fields.
func (c *Config) setDefaults() error {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.File == "" {
		c.Log.File = "journal.log"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 10
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
	if c.Log.Stdout == nil {
		on := true
		c.Log.Stdout = &on
	}

	def := engine.DefaultConfig()
	ev := &c.Evaluation
	if ev.MaxRiskPercent == 0 {
		ev.MaxRiskPercent = def.MaxRiskPercent
	}
	if ev.MinRRRatio == 0 {
		ev.MinRRRatio = def.MinRRRatio
	}
	if ev.BaseScore == 0 {
		ev.BaseScore = def.BaseScore
	}
	if ev.Trade == (ThresholdConfig{}) {
		ev.Trade = ThresholdConfig{Good: def.Trade.Good, Average: def.Trade.Average}
	}
	if ev.Session == (ThresholdConfig{}) {
		ev.Session = ThresholdConfig{Good: def.Session.Good, Average: def.Session.Average}
	}
	ev.Penalties = upperKeys(ev.Penalties)
	for id, p := range def.Penalties {
		if _, ok := ev.Penalties[string(id)]; !ok {
			ev.Penalties[string(id)] = p
		}
	}
	ev.VerdictScores = upperKeys(ev.VerdictScores)
	for v, s := range def.VerdictScores {
		if _, ok := ev.VerdictScores[string(v)]; !ok {
			ev.VerdictScores[string(v)] = s
		}
	}

	if c.Journal.RetentionHours > 0 && c.Journal.PurgeIntervalMinutes == 0 {
		c.Journal.PurgeIntervalMinutes = 15
	}
	if c.API.ListenAddress == "" {
		c.API.ListenAddress = ":8080"
	}
	if c.API.AllowedOrigin == "" {
		c.API.AllowedOrigin = "*"
	}
	return nil
}

func upperKeys(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

// applyEnv overrides file values with JOURNAL_* environment variables.
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"JOURNAL_ENV":            &c.App.Env,
		"JOURNAL_LOG_LEVEL":      &c.App.LogLevel,
		"JOURNAL_LOG_DIR":        &c.Log.Dir,
		"JOURNAL_API_ADDRESS":    &c.API.ListenAddress,
		"JOURNAL_ALLOWED_ORIGIN": &c.API.AllowedOrigin,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"JOURNAL_MAX_RISK_PERCENT": &c.Evaluation.MaxRiskPercent,
		"JOURNAL_MIN_RR_RATIO":     &c.Evaluation.MinRRRatio,
	}
	for key, dst := range floats {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}

	ints := map[string]*int{
		"JOURNAL_MAX_ENTRIES":     &c.Journal.MaxEntriesPerSession,
		"JOURNAL_RETENTION_HOURS": &c.Journal.RetentionHours,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v := strings.TrimSpace(os.Getenv("JOURNAL_SEED_DEMO")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("JOURNAL_SEED_DEMO: %w", err)
		}
		c.Journal.SeedDemo = b
	}
	return nil
}

// Validate checks field ranges and that the evaluation settings form a valid engine.Config.
func (c *Config) Validate() error {
	var errs []error
	switch c.App.Env {
	case "dev", "staging", "prod":
	default:
		errs = append(errs, fmt.Errorf("app.env must be one of dev, staging, prod, got %q", c.App.Env))
	}
	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("app.logLevel must be one of debug, info, warn, error, got %q", c.App.LogLevel))
	}
	if c.Journal.MaxEntriesPerSession < 0 {
		errs = append(errs, fmt.Errorf("journal.maxEntriesPerSession must be >= 0, got %d", c.Journal.MaxEntriesPerSession))
	}
	if c.Journal.RetentionHours < 0 {
		errs = append(errs, fmt.Errorf("journal.retentionHours must be >= 0, got %d", c.Journal.RetentionHours))
	}
	for id := range c.Evaluation.Penalties {
		switch model.RuleID(strings.ToUpper(id)) {
		case model.RuleStopLoss, model.RuleRiskLimit, model.RuleRiskReward, model.RuleRuleDiscipline:
		default:
			errs = append(errs, fmt.Errorf("evaluation.penalties: unknown rule %q", id))
		}
	}
	for i, s := range c.Instruments {
		if strings.TrimSpace(s.Symbol) == "" {
			errs = append(errs, fmt.Errorf("instruments[%d]: symbol is required", i))
		}
		if s.ContractSize <= 0 {
			errs = append(errs, fmt.Errorf("instruments[%d] %s: contractSize must be > 0", i, s.Symbol))
		}
		switch model.ParseMarket(string(s.Market)) {
		case model.MarketForex, model.MarketCommodity, model.MarketCrypto, model.MarketIndian:
		default:
			errs = append(errs, fmt.Errorf("instruments[%d] %s: unknown market %q", i, s.Symbol, s.Market))
		}
	}
	if err := c.EvaluationConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("evaluation: %w", err))
	}
	return errors.Join(errs...)
}

// EvaluationConfig converts the evaluation section into an engine.Config.
func (c *Config) EvaluationConfig() engine.Config {
	ev := c.Evaluation
	out := engine.Config{
		MaxRiskPercent: ev.MaxRiskPercent,
		MinRRRatio:     ev.MinRRRatio,
		BaseScore:      ev.BaseScore,
		Penalties:      make(map[model.RuleID]float64, len(ev.Penalties)),
		Trade:          engine.Thresholds{Good: ev.Trade.Good, Average: ev.Trade.Average},
		Session:        engine.Thresholds{Good: ev.Session.Good, Average: ev.Session.Average},
		VerdictScores:  make(map[model.Verdict]float64, len(ev.VerdictScores)),
	}
	for id, p := range ev.Penalties {
		out.Penalties[model.RuleID(strings.ToUpper(id))] = p
	}
	for v, s := range ev.VerdictScores {
		out.VerdictScores[model.Verdict(strings.ToUpper(v))] = s
	}
	return out
}

// Retention returns how long an idle session is kept, zero for forever.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Journal.RetentionHours) * time.Hour
}

// PurgeInterval returns how often idle sessions are purged.
func (c *Config) PurgeInterval() time.Duration {
	return time.Duration(c.Journal.PurgeIntervalMinutes) * time.Minute
}
