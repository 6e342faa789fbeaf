package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newPackagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List packages with autoVerify domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				names, err := env.service.QueryValidVerificationPackageNames(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newInfoCommand() *cobra.Command {
	var packageName string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the domain set id and verification status of a package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := requireFlag(packageName, "package")
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				info, err := env.service.GetDomainVerificationInfo(ctx, name)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "package: %s\n", info.PackageName)
				fmt.Fprintf(out, "domain_set_id: %s\n", info.DomainSetID)
				hosts := make([]string, 0, len(info.HostToStatus))
				for host := range info.HostToStatus {
					hosts = append(hosts, host)
				}
				sort.Strings(hosts)
				for _, host := range hosts {
					fmt.Fprintf(out, "  %s: %s\n", host, info.HostToStatus[host])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&packageName, "package", "", "Package name")
	return cmd
}
