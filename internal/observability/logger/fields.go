package logger

import "go.uber.org/zap"

// ---- sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
func Count(v int) zap.Field        { return zap.Int("count", v) }

// ---- dominio ----

// Connection es el nombre de la connection (nunca datos del usuario).
func Connection(v string) zap.Field { return zap.String("connection", v) }

func Strategy(v string) zap.Field  { return zap.String("strategy", v) }
func AttemptID(v string) zap.Field { return zap.String("attempt_id", v) }
func ClientID(v string) zap.Field  { return zap.String("client_id", v) }
func Tenant(v string) zap.Field    { return zap.String("tenant", v) }
func Mode(v string) zap.Field      { return zap.String("mode", v) }
func Status(v string) zap.Field    { return zap.String("status", v) }
