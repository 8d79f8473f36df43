package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-lock/internal/config"
	"github.com/dropDatabas3/hellojohn-lock/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-lock/internal/tenant"
	"github.com/dropDatabas3/hellojohn-lock/pkg/lock"
)

type app struct {
	ConfigPath     string
	DescriptorPath string
	EnvFile        string
	OutFormat      string // "json" | "text"

	cfg *config.Config
}

// print emite v como JSON indentado o, en modo text, las líneas de text.
func (a *app) print(v any, text func() []string) {
	if a.OutFormat == "json" {
		b, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(string(b))
		return
	}
	for _, l := range text() {
		fmt.Println(l)
	}
}

func (a *app) client(opts ...lock.Option) (*lock.Client, error) {
	if a.DescriptorPath != "" {
		d, err := tenant.LoadFile(a.DescriptorPath)
		if err != nil {
			return nil, fmt.Errorf("descriptor: %w", err)
		}
		opts = append(opts, lock.WithDescriptor(d))
	}
	opts = append(opts, lock.WithLogger(logger.L()))
	return lock.New(a.cfg, opts...)
}

func main() {
	a := &app{
		ConfigPath: envOr("LOCK_CONFIG", ""),
		EnvFile:    envOr("LOCK_ENV_FILE", ".env"),
		OutFormat:  envOr("LOCK_OUT", "text"),
	}

	root := &cobra.Command{
		Use:           "lockctl",
		Short:         "CLI para inspeccionar connections y probar el login web de una aplicación",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.loadEnv(cmd.Flags().Changed)
			cfg, err := config.Load(a.ConfigPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if a.OutFormat != "json" && a.OutFormat != "text" {
				return fmt.Errorf("--out debe ser json|text")
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Disabled: cfg.Log.Disabled, ServiceName: "lockctl"})
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.ConfigPath, "config", a.ConfigPath, "Archivo YAML de configuración (env LOCK_CONFIG)")
	root.PersistentFlags().StringVar(&a.DescriptorPath, "descriptor", "", "Descriptor local (JSON o JSONP) en lugar de descargarlo")
	root.PersistentFlags().StringVar(&a.EnvFile, "env-file", a.EnvFile, "Archivo .env a cargar (env LOCK_ENV_FILE; no se lee desde el propio .env)")
	root.PersistentFlags().StringVar(&a.OutFormat, "out", a.OutFormat, "Formato de salida: json|text (env LOCK_OUT)")

	root.AddCommand(
		resolveCmd(a),
		matchCmd(a),
		fetchCmd(a),
		authorizeURLCmd(a),
		parseCallbackCmd(a),
		loginCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func resolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resuelve la configuración de login (connections filtradas, modo inicial, pantallas)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()
			ac, err := c.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			view := newConfigView(ac)
			a.print(view, view.lines)
			return nil
		},
	}
}

func matchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match <email>",
		Short: "Busca la connection enterprise que corresponde al dominio del email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()
			conn, ok, err := c.MatchEnterprise(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res := map[string]any{"matched": ok}
			if ok {
				res["connection"] = conn.Name()
				res["strategy"] = conn.Strategy()
				res["domain"] = conn.Domain()
			}
			a.print(res, func() []string {
				if !ok {
					return []string{"sin match"}
				}
				return []string{fmt.Sprintf("%s (%s, %s)", conn.Name(), conn.Strategy(), conn.Domain())}
			})
			return nil
		},
	}
}

func fetchCmd(a *app) *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Descarga el descriptor del tenant y opcionalmente lo guarda para --descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := lock.New(a.cfg, lock.WithLogger(logger.L()))
			if err != nil {
				return err
			}
			defer c.Close()
			raw, err := c.DescriptorJSON(cmd.Context())
			if err != nil {
				return err
			}
			if save != "" {
				if err := tenant.SaveFile(save, raw); err != nil {
					return err
				}
				logger.S().Infow("descriptor guardado", "path", save)
			}
			var v any
			_ = json.Unmarshal(raw, &v)
			a.print(v, func() []string { return []string{string(raw)} })
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "Ruta donde guardar el descriptor (escritura atómica)")
	return cmd
}

// loadEnv carga el .env (opcional; las variables ya definidas ganan) y vuelve a
// leer LOCK_CONFIG y LOCK_OUT para los flags que no vinieron por línea de comandos.
func (a *app) loadEnv(changed func(string) bool) {
	_ = godotenv.Load(a.EnvFile)
	if !changed("config") {
		a.ConfigPath = envOr("LOCK_CONFIG", a.ConfigPath)
	}
	if !changed("out") {
		a.OutFormat = envOr("LOCK_OUT", a.OutFormat)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	s = append([]string(nil), s...)
	sort.Strings(s)
	return strings.Join(s, ", ")
}
