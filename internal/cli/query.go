package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newOwnersCommand() *cobra.Command {
	var (
		domain string
		user   string
	)
	cmd := &cobra.Command{
		Use:   "owners",
		Short: "List the packages that currently own a domain for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := requireFlag(domain, "domain")
			if err != nil {
				return err
			}
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				owners, err := env.service.GetOwnersForDomain(ctx, host, userID)
				if err != nil {
					return err
				}
				for _, owner := range owners {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\toverrideable=%t\n", owner.PackageName, owner.Level, owner.Overrideable)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Host name")
	cmd.Flags().StringVar(&user, "user", "0", "User id")
	return cmd
}

func newUserStateCommand() *cobra.Command {
	var (
		packageName string
		user        string
	)
	cmd := &cobra.Command{
		Use:   "user-state",
		Short: "Show the per-host state of a package for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := requireFlag(packageName, "package")
			if err != nil {
				return err
			}
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				state, err := env.service.GetDomainVerificationUserState(ctx, name, userID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "package: %s\n", state.PackageName)
				fmt.Fprintf(out, "domain_set_id: %s\n", state.DomainSetID)
				fmt.Fprintf(out, "user: %d\n", state.UserID)
				fmt.Fprintf(out, "link_handling_allowed: %t\n", state.LinkHandlingAllowed)
				hosts := make([]string, 0, len(state.HostToState))
				for host := range state.HostToState {
					hosts = append(hosts, host)
				}
				sort.Strings(hosts)
				for _, host := range hosts {
					fmt.Fprintf(out, "  %s: %s\n", host, state.HostToState[host])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&packageName, "package", "", "Package name")
	cmd.Flags().StringVar(&user, "user", "0", "User id")
	return cmd
}
