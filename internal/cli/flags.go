package cli

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"domverify/internal/types"
)

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func resolveInts(cmd *cobra.Command, values []int, key string, flagName string) []int {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetIntSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetIntSlice(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}

func requireFlag(value string, name string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("--%s is required", name))
	}
	return trimmed, nil
}

func parseDomainSetID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.UUID{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid domain set id: %s", value)).
			WithCause(err)
	}
	return id, nil
}

// parseUser accepts a numeric user id or "all".
func parseUser(value string) (int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "all" {
		return types.UserAll, nil
	}
	var userID int
	if _, err := fmt.Sscanf(trimmed, "%d", &userID); err != nil || fmt.Sprint(userID) != trimmed {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid user: %s", value))
	}
	return userID, nil
}

// statusResult turns a non-OK business outcome into an error carrying the
// status name.
func statusResult(code types.StatusCode, err error) error {
	if err != nil {
		return err
	}
	if code == types.StatusOK {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(code.String())
}
