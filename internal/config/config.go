package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del gateway. Se carga desde YAML y se
// pisa con variables de entorno (ver applyEnvOverrides).
type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL time.Duration `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer string `yaml:"issuer"`
		// Nombre del secreto que contiene la seed ed25519 (base64, 32 bytes).
		// La clave se resuelve SIEMPRE vía el secrets provider; no hay default.
		SigningKeySecret string        `yaml:"signing_key_secret"`
		AccessTTL        time.Duration `yaml:"access_ttl"`
		RefreshTTL       time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Auth struct {
		// TTL de los authorization codes (single-use).
		CodeTTL time.Duration `yaml:"code_ttl"`
		// TTL de sesiones SallyPort.
		SessionTTL time.Duration `yaml:"session_ttl"`
		// Nombre del secreto con la gateway key para /api/sallyport/verify.
		// Vacío => endpoint abierto (solo dev).
		GatewayKeySecret string `yaml:"gateway_key_secret"`
	} `yaml:"auth"`

	Secrets struct {
		// env es el único provider embebido; el resto llega por interfaz.
		Provider     string        `yaml:"provider"`
		Prefix       string        `yaml:"prefix"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
		MaxRetries   int           `yaml:"max_retries"`
	} `yaml:"secrets"`

	Storage struct {
		// memory | postgres — backend del credential store.
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Tenants struct {
		// Ruta al registry YAML de tenants (tiers, flags, límites).
		RegistryPath string `yaml:"registry_path"`
		// Sufijo para construir mcp_endpoint: mcp.<tenant>.<suffix>
		DomainSuffix string `yaml:"domain_suffix"`
	} `yaml:"tenants"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Token   RateRule      `yaml:"token"`
		Verify  RateRule      `yaml:"verify"`
		Window  time.Duration `yaml:"window"` // fallback global
	} `yaml:"rate"`

	Deploy struct {
		DefaultRegion      string `yaml:"default_region"`
		DefaultServiceType string `yaml:"default_service_type"`
	} `yaml:"deploy"`

	// Clients seed: credenciales provisionadas por configuración (solo
	// driver=memory). En postgres viven en la tabla clients.
	Clients []ClientSeed `yaml:"clients"`
}

// RateRule es un límite fixed-window por endpoint.
type RateRule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// ClientSeed es una credencial registrada out-of-band; en runtime el store
// es read-only. SecretHash es un PHC argon2id; nunca se configura en claro.
type ClientSeed struct {
	ClientID   string   `yaml:"client_id"`
	SecretHash string   `yaml:"secret_hash"`
	GrantTypes []string `yaml:"grant_types"`
	Scopes     []string `yaml:"scopes"`
	Tenant     string   `yaml:"tenant"`
}

// Load lee el YAML, aplica defaults y pisa con env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == 0 {
		c.Cache.Memory.DefaultTTL = 2 * time.Minute
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "https://sallyport.2100.cool"
	}
	if c.JWT.SigningKeySecret == "" {
		c.JWT.SigningKeySecret = "SALLYPORT_SIGNING_KEY"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = time.Hour
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 720 * time.Hour // 30d
	}
	if c.Auth.CodeTTL == 0 {
		c.Auth.CodeTTL = 5 * time.Minute
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 12 * time.Hour
	}
	if c.Secrets.Provider == "" {
		c.Secrets.Provider = "env"
	}
	if c.Secrets.CacheTTL == 0 {
		c.Secrets.CacheTTL = 5 * time.Minute
	}
	if c.Secrets.FetchTimeout == 0 {
		c.Secrets.FetchTimeout = 5 * time.Second
	}
	if c.Secrets.MaxRetries == 0 {
		c.Secrets.MaxRetries = 3
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Tenants.DomainSuffix == "" {
		c.Tenants.DomainSuffix = "2100.cool"
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Rate.Token.Limit == 0 {
		c.Rate.Token.Limit = 30
	}
	if c.Rate.Token.Window == 0 {
		c.Rate.Token.Window = time.Minute
	}
	if c.Rate.Verify.Limit == 0 {
		c.Rate.Verify.Limit = 10
	}
	if c.Rate.Verify.Window == 0 {
		c.Rate.Verify.Window = time.Minute
	}
	if c.Deploy.DefaultRegion == "" {
		c.Deploy.DefaultRegion = "us-west1"
	}
	if c.Deploy.DefaultServiceType == "" {
		c.Deploy.DefaultServiceType = "mcp-client"
	}
}

// applyEnvOverrides pisa el YAML con variables de entorno. En prod fuerza
// además que el cache sea compartido si hay más de una instancia (eso queda
// en manos del operador: SALLYPORT_CACHE_KIND=redis).
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SALLYPORT_CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvDur("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("TENANT_REGISTRY_PATH"); ok {
		c.Tenants.RegistryPath = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
}

// Validate rechaza configuraciones que no pueden arrancar.
func (c *Config) Validate() error {
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind %q no soportado (memory|redis)", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("config: cache.redis.addr requerido con kind=redis")
	}
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("config: storage.driver %q no soportado (memory|postgres)", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn requerido con driver=postgres")
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("config: jwt.access_ttl debe ser > 0")
	}
	return nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
