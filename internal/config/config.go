package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/spf13/viper"

	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

// Config holds all application configuration, including secrets, flags, etc.
// It is built once at startup and never mutated afterwards.
type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	DBUrl            string

	JWTSecretKey       []byte
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BcryptCost         int

	RevocationBackend        string
	RedisURL                 string
	BlocklistCleanupSchedule string

	SendGridAPIKey string
	MigrateOnStart bool

	// Optional bootstrap admin, created at startup when both are set.
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// Static flags, fetched once from LaunchDarkly when an SDK key is present,
	// otherwise taken from the environment.
	LDFlag_SendgridFromEmail   string
	LDFlag_SendgridSandboxMode bool
	LDFlag_ShortTokenTTL       bool
	LDFlag_CORSHighSecurity    bool
	LDFlag_RotateRefreshTokens bool
}

// Revocation backends.
const (
	RevocationBackendMemory   = "memory"
	RevocationBackendPostgres = "postgres"
	RevocationBackendRedis    = "redis"
)

const (
	OrganizationName          = utils.OrganizationName
	DefaultAppPort            = "8080"
	DefaultTokenExpiry        = 15 * time.Minute
	DefaultRefreshTokenExpiry = 30 * 24 * time.Hour
	TestShortTokenExpiry      = 2 * time.Second
	TestShortRefreshExpiry    = 8 * time.Second
	DefaultCleanupSchedule    = "15 3 * * *"
	MinSecretKeyLength        = 32
	LDConnectionTimeout       = 5 * time.Second
)

// Build-time override, set with -ldflags.
var AppName = "stores-api"

// LoadConfig reads the environment (and an optional .env file) and returns
// a *Config. Any missing required value is fatal.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err == nil {
		utils.Logger.Debug("Loaded .env file")
	}
	v.AutomaticEnv()

	cfg, err := Load(v)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	if sdkKey := v.GetString("LD_SDK_KEY"); sdkKey != "" {
		if err := cfg.applyLaunchDarklyFlags(sdkKey, v.GetString("LD_CONTEXT_KEY")); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to load LaunchDarkly flags")
		}
	} else {
		utils.Logger.Debug("LD_SDK_KEY not set; using flags from environment")
	}
	cfg.applyShortTTL()

	utils.Logger.Infof("Loaded config for %s (revocation backend: %s)", cfg.AppName, cfg.RevocationBackend)
	return cfg
}

// Load builds a Config from an already prepared viper instance.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_NAME", AppName)
	v.SetDefault("APP_PORT", DefaultAppPort)
	v.SetDefault("APP_URL", "http://localhost:"+DefaultAppPort)
	v.SetDefault("JWT_ACCESS_TTL", DefaultTokenExpiry.String())
	v.SetDefault("JWT_REFRESH_TTL", DefaultRefreshTokenExpiry.String())
	v.SetDefault("BCRYPT_COST", utils.DefaultBcryptCost)
	v.SetDefault("REVOCATION_BACKEND", RevocationBackendMemory)
	v.SetDefault("BLOCKLIST_CLEANUP_SCHEDULE", DefaultCleanupSchedule)
	v.SetDefault("SENDGRID_FROM_EMAIL", "")
	v.SetDefault("SENDGRID_SANDBOX_MODE", false)
	v.SetDefault("SHORT_TOKEN_TTL", false)
	v.SetDefault("CORS_HIGH_SECURITY", false)
	v.SetDefault("ROTATE_REFRESH_TOKENS", false)
	v.SetDefault("MIGRATE_ON_START", false)

	secret := v.GetString("JWT_SECRET_KEY")
	if secret == "" {
		return nil, errors.New("JWT_SECRET_KEY env var is missing")
	}
	if len(secret) < MinSecretKeyLength {
		utils.Logger.Warnf("JWT_SECRET_KEY is shorter than %d bytes", MinSecretKeyLength)
	}

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL env var is missing")
	}

	accessTTL := v.GetDuration("JWT_ACCESS_TTL")
	if accessTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL must be positive, got %q", v.GetString("JWT_ACCESS_TTL"))
	}
	refreshTTL := v.GetDuration("JWT_REFRESH_TTL")
	if refreshTTL <= accessTTL {
		return nil, errors.New("JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL")
	}

	backend := strings.ToLower(v.GetString("REVOCATION_BACKEND"))
	switch backend {
	case RevocationBackendMemory, RevocationBackendPostgres:
	case RevocationBackendRedis:
		if v.GetString("REDIS_URL") == "" {
			return nil, errors.New("REDIS_URL is required when REVOCATION_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown REVOCATION_BACKEND %q", backend)
	}
	if backend == RevocationBackendMemory {
		utils.Logger.Warn("Using in-memory token blocklist; revoked tokens are forgotten on restart")
	}

	return &Config{
		OrganizationName:           OrganizationName,
		AppName:                    v.GetString("APP_NAME"),
		AppPort:                    v.GetString("APP_PORT"),
		AppUrl:                     v.GetString("APP_URL"),
		DBUrl:                      dbURL,
		JWTSecretKey:               []byte(secret),
		AccessTokenExpiry:          accessTTL,
		RefreshTokenExpiry:         refreshTTL,
		BcryptCost:                 v.GetInt("BCRYPT_COST"),
		RevocationBackend:          backend,
		RedisURL:                   v.GetString("REDIS_URL"),
		BlocklistCleanupSchedule:   v.GetString("BLOCKLIST_CLEANUP_SCHEDULE"),
		SendGridAPIKey:             v.GetString("SENDGRID_API_KEY"),
		MigrateOnStart:             v.GetBool("MIGRATE_ON_START"),
		AdminUsername:              v.GetString("ADMIN_USERNAME"),
		AdminPassword:              v.GetString("ADMIN_PASSWORD"),
		AdminEmail:                 v.GetString("ADMIN_EMAIL"),
		LDFlag_SendgridFromEmail:   v.GetString("SENDGRID_FROM_EMAIL"),
		LDFlag_SendgridSandboxMode: v.GetBool("SENDGRID_SANDBOX_MODE"),
		LDFlag_ShortTokenTTL:       v.GetBool("SHORT_TOKEN_TTL"),
		LDFlag_CORSHighSecurity:    v.GetBool("CORS_HIGH_SECURITY"),
		LDFlag_RotateRefreshTokens: v.GetBool("ROTATE_REFRESH_TOKENS"),
	}, nil
}

// applyLaunchDarklyFlags overrides the env-provided flag values with the
// ones served by LaunchDarkly. Flags are read once; changes need a restart.
func (c *Config) applyLaunchDarklyFlags(sdkKey, contextKey string) error {
	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		return errors.New("LaunchDarkly client failed to initialize")
	}

	if contextKey == "" {
		contextKey = c.AppName
	}
	ctx := ldcontext.NewWithKind(ldcontext.Kind("service"), contextKey)

	fromEmail, err := ldClient.StringVariation("sendgrid_from_email", ctx, c.LDFlag_SendgridFromEmail)
	if err != nil {
		return fmt.Errorf("sendgrid_from_email flag: %w", err)
	}
	utils.Logger.Debugf("sendgrid_from_email flag: %s", fromEmail)

	sandbox, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, c.LDFlag_SendgridSandboxMode)
	if err != nil {
		return fmt.Errorf("sendgrid_sandbox_mode flag: %w", err)
	}
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", sandbox)

	shortTTL, err := ldClient.BoolVariation("short_token_ttl", ctx, c.LDFlag_ShortTokenTTL)
	if err != nil {
		return fmt.Errorf("short_token_ttl flag: %w", err)
	}
	utils.Logger.Debugf("short_token_ttl flag: %t", shortTTL)

	corsHigh, err := ldClient.BoolVariation("cors_high_security", ctx, c.LDFlag_CORSHighSecurity)
	if err != nil {
		return fmt.Errorf("cors_high_security flag: %w", err)
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsHigh)

	rotate, err := ldClient.BoolVariation("rotate_refresh_tokens", ctx, c.LDFlag_RotateRefreshTokens)
	if err != nil {
		return fmt.Errorf("rotate_refresh_tokens flag: %w", err)
	}
	utils.Logger.Debugf("rotate_refresh_tokens flag: %t", rotate)

	c.LDFlag_SendgridFromEmail = fromEmail
	c.LDFlag_SendgridSandboxMode = sandbox
	c.LDFlag_ShortTokenTTL = shortTTL
	c.LDFlag_CORSHighSecurity = corsHigh
	c.LDFlag_RotateRefreshTokens = rotate
	return nil
}

// applyShortTTL swaps in the test expiries when short_token_ttl is on.
func (c *Config) applyShortTTL() {
	if !c.LDFlag_ShortTokenTTL {
		return
	}
	utils.Logger.Warn("short_token_ttl enabled; using test token expiries")
	c.AccessTokenExpiry = TestShortTokenExpiry
	c.RefreshTokenExpiry = TestShortRefreshExpiry
}

// Close wipes the signing secret from memory.
func (c *Config) Close() {
	for i := range c.JWTSecretKey {
		c.JWTSecretKey[i] = 0
	}
}
