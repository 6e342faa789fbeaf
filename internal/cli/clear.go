package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset verification state",
	}
	cmd.AddCommand(newClearPackageCommand())
	cmd.AddCommand(newClearUserCommand())
	cmd.AddCommand(newClearStateCommand())
	cmd.AddCommand(newClearUserStatesCommand())
	return cmd
}

func newClearPackageCommand() *cobra.Command {
	var packageName string
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Reset statuses and selections of one package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := requireFlag(packageName, "package")
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				code := env.service.ClearPackage(ctx, name)
				printStatus(cmd, code)
				return statusResult(code, nil)
			})
		},
	}
	cmd.Flags().StringVar(&packageName, "package", "", "Package name")
	return cmd
}

func newClearUserCommand() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Drop every selection of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireFlag(user, "user"); err != nil {
				return err
			}
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				env.service.ClearUser(ctx, userID)
				fmt.Fprintf(cmd.OutOrStdout(), "cleared user %d\n", userID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id")
	return cmd
}

func newClearStateCommand() *cobra.Command {
	var packages []string
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Reset verification statuses (all packages when none are given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				env.service.ClearDomainVerificationState(ctx, packageFilter(packages))
				fmt.Fprintln(cmd.OutOrStdout(), "cleared verification state")
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&packages, "package", nil, "Packages to reset")
	return cmd
}

func newClearUserStatesCommand() *cobra.Command {
	var (
		packages []string
		user     string
	)
	cmd := &cobra.Command{
		Use:   "user-states",
		Short: "Reset user selections (all packages when none are given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				env.service.ClearUserStates(ctx, packageFilter(packages), userID)
				fmt.Fprintln(cmd.OutOrStdout(), "cleared user states")
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&packages, "package", nil, "Packages to reset")
	cmd.Flags().StringVar(&user, "user", "all", "User id or \"all\"")
	return cmd
}

// packageFilter maps an empty flag to nil, which the engine reads as every
// package.
func packageFilter(packages []string) []string {
	if len(packages) == 0 {
		return nil
	}
	return packages
}
