package main

import (
	"context"
	"github.com/XANi/go-yamlcfg"
	"github.com/XANi/verisure2hub/config"
	"github.com/efigence/go-mon"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
	"os/signal"
	"syscall"
)

var version string
var log *zap.SugaredLogger
var debug = true

func init() {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	// naive systemd detection. Drop timestamp if running under it
	if os.Getenv("JOURNAL_STREAM") != "" {
		consoleEncoderConfig.TimeKey = ""
	}
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig)
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return (lvl < zapcore.ErrorLevel) != (lvl == zapcore.DebugLevel && !debug)
	})
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, os.Stderr, lowPriority),
		zapcore.NewCore(consoleEncoder, os.Stderr, highPriority),
	)
	logger := zap.New(core)
	if debug {
		logger = logger.WithOptions(
			zap.Development(),
			zap.AddCaller(),
			zap.AddStacktrace(highPriority),
		)
	} else {
		logger = logger.WithOptions(
			zap.AddCaller(),
		)
	}
	log = logger.Sugar()
}

func main() {
	defer log.Sync()
	// register internal stats
	mon.RegisterGcStats()
	app := &cli.Command{
		Name:        "verisure2hub",
		Description: "Publish Verisure alarm, climate and smart plug status to a home automation hub over MQTT",
		Version:     version,
		HideHelp:    true,
	}
	log.Infof("Starting %s version: %s", app.Name, version)
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "help, h", Usage: "show help"},
		&cli.BoolFlag{Name: "debug, d", Usage: "enable debug logs"},
		&cli.StringFlag{Name: "config, c",
			Usage: "config file. Will be created if it does not exist",
		},
		&cli.StringFlag{
			Name:  "username",
			Usage: "Verisure username",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("VERISURE_USERNAME"),
			),
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "Verisure password",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("VERISURE_PASSWORD"),
			),
		},
		&cli.StringFlag{
			Name:  "verisure-url",
			Usage: "vendor gateway URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("VERISURE_URL"),
			),
		},
		&cli.StringFlag{
			Name:  "listen-addr",
			Usage: "Listen addr for status API, disabled when empty",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("LISTEN_ADDR"),
			),
		},
		&cli.StringFlag{
			Name:  "mqtt-addr",
			Usage: "mqtt broker address",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("MQTT_ADDR"),
			),
		},
		&cli.StringFlag{
			Name:  "mqtt-prefix",
			Usage: "prefix of every published topic",
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "how often to poll the vendor",
		},
		&cli.StringFlag{
			Name:  "pprof-addr",
			Value: "",
			Usage: "address to run pprof on, disabled by default",
		},
	}
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Bool("help") {
			cli.ShowAppHelp(c)
			os.Exit(1)
		}
		var cfg config.Config
		if c.String("config") != "" {
			err := yamlcfg.LoadConfig([]string{c.String("config")}, &cfg)
			if err != nil {
				log.Fatal(err)
			}
		}
		overrideFromFlags(c, &cfg)
		cfg.ApplyDefaults()
		debug = cfg.Debug
		log.Debug("debug enabled")
		if cfg.MQTTAddress == "" {
			log.Panic("must specify --mqtt-addr or mqtt_address in config")
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func overrideFromFlags(c *cli.Command, cfg *config.Config) {
	if v := c.String("username"); v != "" {
		cfg.Verisure.Username = v
	}
	if v := c.String("password"); v != "" {
		cfg.Verisure.Password = v
	}
	if v := c.String("verisure-url"); v != "" {
		cfg.Verisure.URL = v
	}
	if v := c.String("listen-addr"); v != "" {
		cfg.ListenAddress = v
	}
	if v := c.String("mqtt-addr"); v != "" {
		cfg.MQTTAddress = v
	}
	if v := c.String("mqtt-prefix"); v != "" {
		cfg.MQTTPrefix = v
	}
	if v := c.Duration("poll-interval"); v != 0 {
		cfg.PollInterval = v
	}
	if v := c.String("pprof-addr"); v != "" {
		cfg.PProfAddress = v
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
}
