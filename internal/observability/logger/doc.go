// Package logger provee el logger Zap singleton del gateway con scoping por contexto.
//
//   - Singleton: una sola instancia global inicializada con Init() en main.
//   - Context scoping: cada request lleva un logger "scoped" con request_id,
//     tenant y subject sin reconstruir el core.
//   - Environments: "dev" usa consola con colores, "prod" emite JSON.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
//	log := logger.From(ctx)
//	log.Info("token issued", logger.Tenant(tenant), logger.ClientID(clientID))
package logger
