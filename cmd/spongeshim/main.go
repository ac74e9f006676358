package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"golang.org/x/text/language"

	"github.com/itsmeow/SpongeCommon/internal/cache"
	"github.com/itsmeow/SpongeCommon/internal/color"
	"github.com/itsmeow/SpongeCommon/internal/config"
	"github.com/itsmeow/SpongeCommon/internal/dispatcher"
	"github.com/itsmeow/SpongeCommon/internal/engine"
	"github.com/itsmeow/SpongeCommon/internal/handlers"
	"github.com/itsmeow/SpongeCommon/internal/influx"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/logging"
	"github.com/itsmeow/SpongeCommon/internal/monitor"
	intOtel "github.com/itsmeow/SpongeCommon/internal/otel"
	"github.com/itsmeow/SpongeCommon/internal/storage"
	"github.com/itsmeow/SpongeCommon/internal/translation"
	"github.com/itsmeow/SpongeCommon/internal/variant"
	"github.com/itsmeow/SpongeCommon/internal/worker"
	"github.com/itsmeow/SpongeCommon/pkg/bridge"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	ServiceName string = "spongeshim"
)

// app owns every long-lived component of one shim session.
type app struct {
	sessionStart time.Time

	logFile  *os.File
	slog     *logging.SlogManager
	logger   *slog.Logger
	zlog     zerolog.Logger
	otel     *intOtel.Provider
	influx   *influx.Manager
	graylogW io.Closer

	catalog  *translation.Catalog
	variants *variant.Registry
	colors   *color.Resolver
	types    *item.Registry
	stacks   *cache.StackCache

	storageType string
	backend     storage.Backend
	worker      *worker.Manager
	dispatcher  *dispatcher.Dispatcher
	handlers    *handlers.Service
	monitor     *monitor.Service
	bridge      *bridge.Bridge
}

// loadConfig reads the config file, falling back to defaults when none exists.
func loadConfig(configDir string) error {
	if err := config.Load(configDir); err != nil {
		config.SetDefaults()
		return err
	}
	return nil
}

// newApp wires the logging stack and the resolvers. Storage is left to
// initStorage so commands that only print tables stay side-effect free.
func newApp(configDir string) (*app, error) {
	a := &app{sessionStart: time.Now(), stacks: cache.NewStackCache()}
	configErr := loadConfig(configDir)

	a.setupLogging()
	if configErr != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		a.logger.Info("Loaded config", "dir", configDir)
	}

	if err := a.setupResolvers(); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) setupLogging() {
	level := viper.GetString("logLevel")
	logsDir := viper.GetString("logsDir")

	var err error
	a.logFile, err = logging.OpenLogFile(logsDir, ServiceName, a.sessionStart)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file, logging to stdout: %v\n", err)
		a.logFile = nil
	}

	var logWriter io.Writer
	if a.logFile != nil {
		logWriter = a.logFile
	}

	otelCfg := config.GetOTelConfig()
	a.otel, err = intOtel.New(intOtel.FromConfig(otelCfg, CurrentVersion, logWriter))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize OTel provider: %v\n", err)
		a.otel, _ = intOtel.New(intOtel.Config{})
	}

	opts := []logging.SetupOption{
		logging.WithServiceName(otelCfg.ServiceName),
		logging.WithContextProvider(a.logContext),
	}
	var zerologExtra []io.Writer
	if viper.GetBool("graylog.enabled") {
		gw, gerr := logging.NewGraylogWriter(viper.GetString("graylog.address"))
		if gerr != nil {
			fmt.Fprintf(os.Stderr, "Graylog disabled: %v\n", gerr)
		} else {
			a.graylogW = gw
			opts = append(opts, logging.WithGraylog(gw))
			zerologExtra = append(zerologExtra, gw)
		}
	}

	var provider *sdklog.LoggerProvider
	if a.otel != nil {
		provider = a.otel.LoggerProvider()
	}

	a.slog = logging.NewSlogManager()
	a.slog.Setup(logWriter, level, provider, opts...)
	a.logger = a.slog.Logger()
	a.zlog = logging.NewZerolog(logWriter, level, zerologExtra...)

	if a.logFile != nil {
		a.logger.Info("Logging to file", "path", a.logFile.Name())
	}
}

// logContext adds live component state to every slog record.
func (a *app) logContext() []slog.Attr {
	attrs := []slog.Attr{slog.Int("cachedStacks", a.stacks.Len())}
	if a.storageType != "" {
		attrs = append(attrs, slog.String("storage", a.storageType))
	}
	if a.variants != nil {
		attrs = append(attrs, slog.Int("cachedResolvers", a.variants.CachedCount()))
	}
	return attrs
}

func (a *app) setupResolvers() error {
	tc := config.GetTranslationConfig()
	fallback, err := translation.ParseLocale(tc.DefaultLocale)
	if err != nil {
		a.logger.Warn("Invalid default locale, using en_US", "locale", tc.DefaultLocale)
		fallback = language.AmericanEnglish
	}

	a.catalog, err = translation.NewDefaultCatalog(fallback)
	if err != nil {
		return fmt.Errorf("load bundled translations: %w", err)
	}
	if tc.LangDir != "" {
		n, err := a.catalog.LoadDir(tc.LangDir)
		if err != nil {
			return fmt.Errorf("load translations from %s: %w", tc.LangDir, err)
		}
		a.logger.Info("Loaded translations", "dir", tc.LangDir, "entries", n)
	}

	plants := engine.DoublePlants()
	sources := make([]variant.Source, len(plants))
	for i, p := range plants {
		sources[i] = p
	}
	a.variants, err = variant.NewRegistry(sources,
		variant.WithNamespace(viper.GetString("namespace")),
		variant.WithTranslations(a.catalog.Factory()),
	)
	if err != nil {
		return fmt.Errorf("build variant registry: %w", err)
	}

	a.colors = color.NewResolver(engine.ArmorColors{}, engine.SheepRamp{})
	a.types = engine.NewItemRegistry()
	a.logger.Debug("Resolvers ready", "variants", a.variants.Len(), "itemTypes", a.types.Len())
	return nil
}

// initStorage creates the backend and everything that sits on top of it.
func (a *app) initStorage() error {
	storageCfg := config.GetStorageConfig()

	backend, err := a.createStorageBackend(storageCfg)
	if err != nil {
		a.logger.Error("Failed to create storage backend", "error", err)
		return err
	}
	// logContext reads this from goroutines Init may start
	a.storageType = storageCfg.Type
	if err := backend.Init(); err != nil {
		a.logger.Error("Failed to initialize storage backend", "error", err)
		return err
	}
	a.backend = backend

	wc := config.GetWorkerConfig()
	a.worker = worker.NewManager(worker.Dependencies{
		Backend:       backend,
		LogManager:    a.slog,
		FlushInterval: wc.FlushInterval,
		BufferSize:    wc.BufferSize,
	})
	a.worker.Start()

	a.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(a.zlog))
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}

	if viper.GetBool("influx.enabled") {
		a.influx = influx.NewManager(a.zlog, filepath.Join(viper.GetString("logsDir"), "influx_backup.log.gz"))
		if err := a.influx.Connect(); err != nil {
			a.logger.Warn("InfluxDB disabled", "error", err)
			a.influx = nil
		} else {
			a.dispatcher.SetObserver(a.influx)
		}
	}

	a.handlers = handlers.NewService(handlers.Dependencies{
		Variants:   a.variants,
		Colors:     a.colors,
		Types:      a.types,
		Stacks:     a.stacks,
		Backend:    backend,
		Persister:  a.worker,
		LogManager: a.slog,
		Version:    CurrentVersion,
	})
	a.handlers.RegisterHandlers(a.dispatcher)
	a.bridge = bridge.New(CurrentVersion, a.dispatcher)

	monDeps := monitor.Dependencies{
		LogManager:  a.slog,
		BackendName: storageCfg.Type,
		QueueLen:    a.worker.QueueLen,
		Resolvers:   a.variants.CachedCount,
		Stacks:      a.stacks.Len,
		LastFlush:   a.worker.GetLastFlushDuration,
		StatusFile:  filepath.Join(viper.GetString("logsDir"), "status.json"),
		Interval:    config.GetDuration("monitor.interval"),
	}
	if a.influx != nil {
		monDeps.Points = a.influx
	}
	a.monitor = monitor.NewService(monDeps)
	if err := a.monitor.Start(); err != nil {
		return err
	}

	a.logger.Info("Storage initialized", "type", storageCfg.Type, "commands", len(a.dispatcher.Commands()))
	return nil
}

// close shuts components down in reverse dependency order.
func (a *app) close() error {
	var errs []error
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.worker != nil {
		errs = append(errs, a.worker.Stop())
	}
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
		if exp, ok := a.backend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
			a.logger.Info("Wrote snapshot", "path", exp.ExportedFilePath())
		}
	}
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.slog != nil {
		if err := a.slog.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.otel != nil {
		errs = append(errs, a.otel.Shutdown(ctx))
	}
	if a.graylogW != nil {
		errs = append(errs, a.graylogW.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

func usage(out io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintf(out, "Usage: %s [flags] <repl|setupdb|palette|variants>\n", ServiceName)
	flags.SetOutput(out)
	flags.PrintDefaults()
}

func run(args []string, in io.Reader, out io.Writer) error {
	flags := pflag.NewFlagSet(ServiceName, pflag.ContinueOnError)
	configDir := flags.StringP("config", "c", ".", "directory containing "+config.FileName)
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(out, "%s %s (%s)\n", ServiceName, CurrentVersion, BuildDate)
		return nil
	}
	if flags.NArg() == 0 {
		usage(out, flags)
		return errors.New("no command given")
	}

	a, err := newApp(*configDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", cerr)
		}
	}()

	switch cmd := strings.ToLower(flags.Arg(0)); cmd {
	case "repl":
		if err := a.initStorage(); err != nil {
			return err
		}
		return a.runREPL(in, out)
	case "setupdb":
		return a.runSetupDB()
	case "palette":
		return a.runPalette(out)
	case "variants":
		return a.runVariants(out, flags.Args()[1:])
	default:
		usage(out, flags)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
