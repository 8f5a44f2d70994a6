package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ItsNotGoodName/x-rxstore/internal/app"
	"github.com/ItsNotGoodName/x-rxstore/internal/build"
	"github.com/ItsNotGoodName/x-rxstore/internal/config"
	"github.com/ItsNotGoodName/x-rxstore/internal/devtools"
	"github.com/ItsNotGoodName/x-rxstore/pkg/actiontype"
	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

type Options struct {
	Debug  bool   `doc:"enable debug"`
	Host   string `doc:"host to listen on"`
	Port   int    `doc:"port to listen on" default:"8080"`
	Config string `doc:"config file" default:".x-rxstore.yaml"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			cfg, err := loadConfig(options.Config)
			if err != nil {
				return err
			}

			loop := component.NewLoop()

			a, err := app.New(cfg, loop)
			if err != nil {
				return err
			}
			defer a.Close()

			server, err := devtools.New(net.JoinHostPort(options.Host, strconv.Itoa(options.Port)), a)
			if err != nil {
				return err
			}
			defer server.Close()

			super := sutureext.New("root", slog.Default())
			sutureext.Add(super, loop)
			sutureext.Add(super, server)

			return super.Serve(ctx)
		})
	})

	cli.Root().Use = "x-rxstore"
	cli.Root().Version = build.Current.String()

	cli.Root().AddCommand(&cobra.Command{
		Use:   "types",
		Short: "List registered action types",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range actiontype.Registered() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the config, writing the default one when missing",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			cfg, err := loadConfig(options.Config)
			if err != nil {
				log.Fatal(err)
			}
			pp.Fprintln(cmd.OutOrStdout(), cfg)
		}),
	})

	cli.Run()
}

func loadConfig(path string) (config.Config, error) {
	configFilePath, err := filepath.Abs(path)
	if err != nil {
		return config.Config{}, err
	}

	store, err := config.NewStore(config.NewDriver(configFilePath))
	if err != nil {
		return config.Config{}, err
	}

	return store.GetConfig()
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
