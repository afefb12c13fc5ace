// Package app cablea todas las dependencias del gateway.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coaching2100/sallyport/internal/cache"
	"github.com/coaching2100/sallyport/internal/config"
	deployctrl "github.com/coaching2100/sallyport/internal/http/controllers/deploy"
	healthctrl "github.com/coaching2100/sallyport/internal/http/controllers/health"
	oauthctrl "github.com/coaching2100/sallyport/internal/http/controllers/oauth"
	spctrl "github.com/coaching2100/sallyport/internal/http/controllers/sallyport"
	tsctrl "github.com/coaching2100/sallyport/internal/http/controllers/tenantstatus"
	mw "github.com/coaching2100/sallyport/internal/http/middlewares"
	"github.com/coaching2100/sallyport/internal/http/router"
	deploysvc "github.com/coaching2100/sallyport/internal/http/services/deploy"
	oauthsvc "github.com/coaching2100/sallyport/internal/http/services/oauth"
	spsvc "github.com/coaching2100/sallyport/internal/http/services/sallyport"
	tssvc "github.com/coaching2100/sallyport/internal/http/services/tenantstatus"
	jwtx "github.com/coaching2100/sallyport/internal/jwt"
	"github.com/coaching2100/sallyport/internal/metrics"
	"github.com/coaching2100/sallyport/internal/rate"
	"github.com/coaching2100/sallyport/internal/secrets"
	"github.com/coaching2100/sallyport/internal/session"
	"github.com/coaching2100/sallyport/internal/store"
	"github.com/coaching2100/sallyport/internal/store/pg"
	"github.com/coaching2100/sallyport/internal/tenant"
)

// Container agrupa las piezas vivas del gateway.
type Container struct {
	Cfg     *config.Config
	Cache   cache.Client
	Clients store.CredentialStore
	Keys    *jwtx.Keystore
	Issuer  *jwtx.Issuer

	handler  http.Handler
	cleanups []func() error
}

// Handler retorna el árbol de rutas listo para servir.
func (c *Container) Handler() http.Handler { return c.handler }

// Build construye el container completo a partir de la configuración.
// Cualquier dependencia crítica ausente (signing key, backend caído) aborta
// el arranque: el gateway no corre degradado.
func Build(ctx context.Context, cfg *config.Config, version string) (*Container, error) {
	c := &Container{Cfg: cfg}

	// ---- Secrets provider ----
	var provider secrets.Provider = secrets.Env{Prefix: cfg.Secrets.Prefix}
	provider = secrets.NewCached(provider, secrets.CachedConfig{
		TTL:          cfg.Secrets.CacheTTL,
		FetchTimeout: cfg.Secrets.FetchTimeout,
		MaxRetries:   cfg.Secrets.MaxRetries,
	})

	// ---- Keystore + issuer ----
	keys, err := jwtx.LoadKeystore(ctx, provider, cfg.JWT.SigningKeySecret)
	if err != nil {
		return nil, fmt.Errorf("app: signing key: %w", err)
	}
	c.Keys = keys
	c.Issuer = jwtx.NewIssuer(cfg.JWT.Issuer, keys, cfg.JWT.AccessTTL)

	// ---- Cache TTL compartido ----
	cc, err := cache.New(cache.Config{
		Kind:   cfg.Cache.Kind,
		Addr:   cfg.Cache.Redis.Addr,
		DB:     cfg.Cache.Redis.DB,
		Prefix: cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("app: cache: %w", err)
	}
	c.Cache = cc
	c.cleanups = append(c.cleanups, cc.Close)

	// ---- Credential store ----
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.New(ctx, cfg.Storage.DSN)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("app: credential store: %w", err)
		}
		c.Clients = st
		c.cleanups = append(c.cleanups, func() error { st.Close(); return nil })
	default:
		c.Clients = store.NewMemory(seedClients(cfg))
	}

	// ---- Tenant registry ----
	registry, err := tenant.LoadRegistry(cfg.Tenants.RegistryPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	// ---- Sesiones y credenciales single-use ----
	sessions := session.NewStore(cc, cfg.Auth.SessionTTL)
	codes := oauthsvc.NewCodeStore(cc, cfg.Auth.CodeTTL)
	refresh := oauthsvc.NewRefreshStore(cc, cfg.JWT.RefreshTTL)

	// ---- Services ----
	tokenSvc := oauthsvc.NewTokenService(oauthsvc.TokenDeps{
		Clients:  c.Clients,
		Issuer:   c.Issuer,
		Registry: registry,
		Codes:    codes,
		Refresh:  refresh,
	})
	verifySvc := spsvc.NewVerifyService(spsvc.VerifyDeps{
		Secrets:          provider,
		GatewayKeySecret: cfg.Auth.GatewayKeySecret,
		Sessions:         sessions,
		Registry:         registry,
	})
	deploySvc := deploysvc.NewService(deploysvc.Deps{
		Registry:           registry,
		DomainSuffix:       cfg.Tenants.DomainSuffix,
		DefaultRegion:      cfg.Deploy.DefaultRegion,
		DefaultServiceType: cfg.Deploy.DefaultServiceType,
	})
	statusSvc := tssvc.NewService(registry, cfg.Tenants.DomainSuffix)

	// ---- Rate limiting (ventana global si el cache es redis) ----
	var tokenLimiter, verifyLimiter rate.Limiter
	if cfg.Rate.Enabled {
		tokenLimiter = newLimiter(cc, "token", cfg.Rate.Token)
		verifyLimiter = newLimiter(cc, "verify", cfg.Rate.Verify)
	}

	// ---- Router ----
	auth := &mw.Authenticator{
		Keys:     keys,
		Issuer:   cfg.JWT.Issuer,
		Sessions: sessions,
		Registry: registry,
	}
	c.handler = router.New(router.Deps{
		Auth:          auth,
		Token:         oauthctrl.NewTokenController(tokenSvc),
		Deploy:        deployctrl.NewController(deploySvc),
		Sallyport:     spctrl.NewController(verifySvc),
		TenantStatus:  tsctrl.NewController(statusSvc),
		Health:        healthctrl.NewController(cc, c.Clients, version),
		Metrics:       metrics.Register(prometheus.DefaultRegisterer),
		TokenLimiter:  tokenLimiter,
		VerifyLimiter: verifyLimiter,
	})

	return c, nil
}

// Close libera backends en orden inverso al de creación.
func (c *Container) Close() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		_ = c.cleanups[i]()
	}
	c.cleanups = nil
}

// seedClients convierte los seeds del config al modelo del store.
func seedClients(cfg *config.Config) []store.Client {
	out := make([]store.Client, 0, len(cfg.Clients))
	for _, s := range cfg.Clients {
		out = append(out, store.Client{
			ClientID:   s.ClientID,
			SecretHash: s.SecretHash,
			GrantTypes: s.GrantTypes,
			Scopes:     s.Scopes,
			Tenant:     s.Tenant,
		})
	}
	return out
}

// newLimiter elige el backend del limiter según el cache compartido.
func newLimiter(cc cache.Client, name string, rule config.RateRule) rate.Limiter {
	if rb, ok := cc.(cache.RedisBacked); ok {
		return rate.NewRedisLimiter(rb.Redis(), "rl:"+name+":", rule.Limit, rule.Window)
	}
	return rate.NewMemoryLimiter(rule.Limit, rule.Window)
}
