package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"domverify/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "DOMVERIFY"

type RootConfig struct {
	ConfigFile   string
	LogLevel     string
	PackagesPath string
	SettingsPath string
	CallerUID    int
	CallerUser   int
	Hidden       []string
	VerifierUIDs []int
}

func Execute() {
	root := newRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "domverify",
		Short:         "Domain verification ownership and state resolution",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(log.Logger.WithContext(ctx))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.PackagesPath, "packages", "packages.yaml", "Installed package snapshot")
	flags.StringVar(&cfg.SettingsPath, "settings", "settings.yaml", "Persisted verification settings")
	flags.IntVar(&cfg.CallerUID, "caller-uid", types.SystemUID, "UID the operation is performed as")
	flags.IntVar(&cfg.CallerUser, "caller-user", 0, "User the caller runs in")
	flags.StringSliceVar(&cfg.Hidden, "hidden", nil, "Packages invisible to the caller")
	flags.IntSliceVar(&cfg.VerifierUIDs, "verifier-uid", nil, "UIDs of verification agent packages")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))

	cmd.AddCommand(newPackagesCommand())
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newSetStatusCommand())
	cmd.AddCommand(newSelectCommand())
	cmd.AddCommand(newLinkHandlingCommand())
	cmd.AddCommand(newLegacyCommand())
	cmd.AddCommand(newOwnersCommand())
	cmd.AddCommand(newUserStateCommand())
	cmd.AddCommand(newClearCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newDumpCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetDefault("packages", "packages.yaml")
	viper.SetDefault("settings", "settings.yaml")
	viper.SetDefault("caller_uid", types.SystemUID)
	viper.SetDefault("caller_user", 0)
	viper.SetDefault("webhook_timeout", defaultWebhookTimeout)
	viper.SetDefault("webhook_retries", 2)
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("domverify")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/domverify")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	message := errorMessage(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeFailedPrecondition:
		if strings.HasPrefix(message, types.ErrorUnableToApprove.String()) {
			return 6
		}
		return 4
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
