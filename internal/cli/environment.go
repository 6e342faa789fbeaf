package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"domverify/internal/adapters"
	"domverify/internal/app"
	"domverify/internal/ports"
	"domverify/internal/types"
)

const defaultWebhookTimeout = 10 * time.Second

// environment is one engine instance booted from the snapshot and settings
// files for the duration of a command.
type environment struct {
	service    *app.Service
	connection *adapters.StaticConnection
	writer     *adapters.CoalescingSettingsWriter
	snapshot   *adapters.PackageSnapshot
	metrics    *adapters.PrometheusMetrics
}

type environmentConfig struct {
	PackagesPath   string
	SettingsPath   string
	CallerUID      int
	CallerUser     int
	Hidden         []string
	VerifierUIDs   []int
	WebhookURLs    []string
	WebhookTimeout time.Duration
	WebhookRetries int
	Grants         map[int][]string
}

func loadEnvironmentConfig(cmd *cobra.Command) (environmentConfig, error) {
	flags := cmd.Flags()
	packagesPath, _ := flags.GetString("packages")
	settingsPath, _ := flags.GetString("settings")
	callerUID, _ := flags.GetInt("caller-uid")
	callerUser, _ := flags.GetInt("caller-user")
	hidden, _ := flags.GetStringSlice("hidden")
	verifiers, _ := flags.GetIntSlice("verifier-uid")

	cfg := environmentConfig{
		PackagesPath:   resolveString(cmd, packagesPath, "packages", "packages"),
		SettingsPath:   resolveString(cmd, settingsPath, "settings", "settings"),
		CallerUID:      resolveInt(cmd, callerUID, "caller_uid", "caller-uid"),
		CallerUser:     resolveInt(cmd, callerUser, "caller_user", "caller-user"),
		Hidden:         resolveStrings(cmd, hidden, "hidden", "hidden"),
		VerifierUIDs:   resolveInts(cmd, verifiers, "verifier_uids", "verifier-uid"),
		WebhookURLs:    viper.GetStringSlice("webhook_url"),
		WebhookTimeout: viper.GetDuration("webhook_timeout"),
		WebhookRetries: viper.GetInt("webhook_retries"),
		Grants:         map[int][]string{},
	}
	if cfg.WebhookTimeout <= 0 {
		cfg.WebhookTimeout = defaultWebhookTimeout
	}
	for key, permissions := range viper.GetStringMapStringSlice("grants") {
		uid, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return environmentConfig{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid uid in grants: %s", key)).
				WithCause(err)
		}
		cfg.Grants[uid] = append(cfg.Grants[uid], permissions...)
	}
	// Verifier packages hold the agent permission.
	for _, uid := range cfg.VerifierUIDs {
		cfg.Grants[uid] = append(cfg.Grants[uid], string(types.PermissionVerificationAgent))
	}
	return cfg, nil
}

func openEnvironment(ctx context.Context, cfg environmentConfig) (*environment, error) {
	file, err := adapters.NewPackageSnapshotFileAdapter().LoadSnapshot(cfg.PackagesPath)
	if err != nil {
		return nil, err
	}
	snapshot, err := adapters.NewPackageSnapshot(file)
	if err != nil {
		return nil, err
	}

	store := adapters.NewSettingsFileAdapter(cfg.SettingsPath)
	writer := adapters.NewCoalescingSettingsWriter(store, 0)
	connection := adapters.NewStaticConnection(snapshot, cfg.CallerUID, cfg.CallerUser, cfg.Hidden, writer)
	metrics := adapters.NewPrometheusMetrics()

	service := app.NewService(connection, newProxy(cfg), adapters.NewStaticAuthorizer(cfg.Grants))
	service.Metrics = metrics
	writer.Source = service.ExportSettings

	saved, err := store.Read()
	if err != nil {
		return nil, err
	}
	if err := service.ImportSettings(ctx, saved); err != nil {
		return nil, err
	}
	for _, state := range snapshot.States() {
		service.AddPackage(ctx, state)
	}
	log.Ctx(ctx).Debug().
		Int("packages", len(snapshot.States())).
		Int("saved", len(saved.Packages)).
		Msg("engine ready")

	return &environment{
		service:    service,
		connection: connection,
		writer:     writer,
		snapshot:   snapshot,
		metrics:    metrics,
	}, nil
}

func newProxy(cfg environmentConfig) ports.ProxyPort {
	if len(cfg.WebhookURLs) > 0 {
		return adapters.NewWebhookProxy(cfg.WebhookURLs, cfg.VerifierUIDs, cfg.WebhookTimeout, cfg.WebhookRetries, log.Logger)
	}
	return adapters.NewLogProxy(log.Logger, cfg.VerifierUIDs)
}

// close hands deferred work back to the engine and persists pending writes.
func (e *environment) close(ctx context.Context) error {
	for _, work := range e.connection.Drain() {
		if err := e.service.RunScheduled(ctx, work.What, work.Obj); err != nil {
			return err
		}
	}
	return e.writer.Flush(ctx)
}

// withEnvironment boots an engine, runs fn and closes the engine even when fn
// fails so accepted mutations are still persisted.
func withEnvironment(cmd *cobra.Command, fn func(ctx context.Context, env *environment) error) error {
	ctx := cmd.Context()
	cfg, err := loadEnvironmentConfig(cmd)
	if err != nil {
		return err
	}
	env, err := openEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	runErr := fn(ctx, env)
	if err := env.close(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
