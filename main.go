package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ByLCY/pagefill/config"
)

const appName = "pagefill"

// appEnv 在命令之间共享已加载的配置与日志。
type appEnv struct {
	Cfg   *config.Config
	Log   *zap.Logger
	start time.Time
}

type envKey struct{}

func envFromContext(ctx context.Context) *appEnv {
	if env, ok := ctx.Value(envKey{}).(*appEnv); ok {
		return env
	}
	return &appEnv{Log: zap.NewNop()}
}

// initializeAppContext 在命令行解析之后、命令执行之前加载配置并准备日志。
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := envFromContext(ctx)

	logging := config.LoggingConfig{}
	if path := cmd.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
		}
		env.Cfg = cfg
		logging = cfg.Logging
	}
	log, err := logging.Prepare(cmd.Bool("verbose"))
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.Log = log
	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", time.Since(env.start)))
		_ = env.Log.Sync()
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	env := &appEnv{Log: zap.NewNop(), start: time.Now()}
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, env), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            appName,
		Usage:           "places text and images onto fixed page templates and writes PDF",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "raise console logging to debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:         "fill",
				Usage:        "Fills page templates with content and writes PDF",
				OnUsageError: usageErrorHandler,
				Action:       runFill,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pages", Aliases: []string{"p"}, Required: true, Usage: "page data `FILE` (YAML list of template/locations/repeat)"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "PDF output `FILE`"},
					&cli.StringFlag{Name: "data", Usage: "`JSON` bound to ${path} placeholders, @FILE reads it from a file"},
					&cli.StringFlag{Name: "debug", Usage: "write layout debug JSON to `FILE`"},
				},
			},
			{
				Name:         "check",
				Usage:        "Validates configuration: formats, templates, fonts and hole types",
				OnUsageError: usageErrorHandler,
				Action:       runCheck,
			},
			{
				Name:         "dumpconfig",
				Usage:        "Writes sample configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
