// Package logger provee el logger zap compartido por todo el SDK.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global, inicializada con Init() o reemplazada
//     por el host con Set() (las apps que ya tienen su propio *zap.Logger).
//   - Context Scoping: cada intento de autorización puede llevar su logger "scoped"
//     con attempt_id y connection sin crear un core nuevo.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Silent: Disabled=true instala zap.NewNop(), útil para hosts que no quieren logs del SDK.
//
// # Usage
//
//	logger.Init(logger.Config{Env: "prod", Level: "info"})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Component("webflow"), logger.Connection(name))
//	log.Debug("authorize uri built")
//
// Nunca loguear tokens ni el state completo: usar util.MaskToken.
package logger
