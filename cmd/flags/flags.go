package flags

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/doc-signing-backend/api"
	"github.com/ruteri/doc-signing-backend/common"
	"github.com/ruteri/doc-signing-backend/config"
	"github.com/urfave/cli/v2"
)

// LoadConfig loads the YAML file named by --config, applies DOCSIGN_*
// environment overrides and then every flag the user set explicitly.
func LoadConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(cCtx.String(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}

	if cCtx.IsSet(ListenAddrFlag.Name) {
		cfg.ListenAddr = cCtx.String(ListenAddrFlag.Name)
	}
	if cCtx.IsSet(MetricsAddrFlag.Name) {
		cfg.MetricsAddr = cCtx.String(MetricsAddrFlag.Name)
	}
	if cCtx.IsSet(PprofFlag.Name) {
		cfg.EnablePprof = cCtx.Bool(PprofFlag.Name)
	}
	if cCtx.IsSet(DrainSecondsFlag.Name) {
		cfg.DrainDuration = time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second
	}
	if cCtx.IsSet(MaxBodyBytesFlag.Name) {
		cfg.MaxBodyBytes = cCtx.Int64(MaxBodyBytesFlag.Name)
	}
	if cCtx.IsSet(StorageFlag.Name) {
		cfg.Storage.URIs = cCtx.StringSlice(StorageFlag.Name)
	}
	if cCtx.IsSet(RegistryFlag.Name) {
		cfg.Storage.Registry = cCtx.Bool(RegistryFlag.Name)
	}
	if cCtx.IsSet(ArchiveFlag.Name) {
		cfg.Storage.Archive = cCtx.Bool(ArchiveFlag.Name)
	}
	if cCtx.IsSet(LogJsonFlag.Name) {
		cfg.Log.JSON = cCtx.Bool(LogJsonFlag.Name)
	}
	if cCtx.IsSet(LogDebugFlag.Name) {
		cfg.Log.Debug = cCtx.Bool(LogDebugFlag.Name)
	}
	if cCtx.IsSet(LogUidFlag.Name) {
		cfg.Log.UID = cCtx.Bool(LogUidFlag.Name)
	}
	if cCtx.IsSet(LogServiceFlag.Name) {
		cfg.Log.Service = cCtx.String(LogServiceFlag.Name)
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg. A nil output logs to stdout.
func SetupLogger(cfg *config.Config, output io.Writer) (log *slog.Logger) {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cfg.Log.Debug,
		JSON:    cfg.Log.JSON,
		Service: cfg.Log.Service,
		Version: common.Version,
		Output:  output,
	})

	if cfg.Log.UID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cfg *config.Config, logger *slog.Logger) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		Log:                      logger,
		EnablePprof:              cfg.EnablePprof,
		DrainDuration:            cfg.DrainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
	}
}

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "YAML configuration file",
	EnvVars: []string{"DOCSIGN_CONFIG"},
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var StorageFlag = &cli.StringSliceFlag{
	Name:  "storage",
	Usage: "storage backend URI, repeatable: memory://name, file:///path, s3://[key:secret@]bucket/prefix?region=..., vault://host:port/mount/path, ipfs://host:port/root",
}

var RegistryFlag = &cli.BoolFlag{
	Name:  "registry",
	Value: true,
	Usage: "record signing events and attribute verifications",
}

var ArchiveFlag = &cli.BoolFlag{
	Name:  "archive",
	Value: false,
	Usage: "keep a copy of every signed document",
}

var MaxBodyBytesFlag = &cli.Int64Flag{
	Name:  "max-body-bytes",
	Value: 50 << 20,
	Usage: "maximum accepted request body size",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var StorageFlags = []cli.Flag{
	ConfigFlag,
	StorageFlag,
	RegistryFlag,
	ArchiveFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	MetricsAddrFlag,
	MaxBodyBytesFlag,
	PprofFlag,
	DrainSecondsFlag,
}
