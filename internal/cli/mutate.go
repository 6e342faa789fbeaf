package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"domverify/internal/types"
)

func printStatus(cmd *cobra.Command, code types.StatusCode) {
	fmt.Fprintln(cmd.OutOrStdout(), code.String())
}

func newSetStatusCommand() *cobra.Command {
	var (
		domainSetID string
		packageName string
		domains     []string
		status      string
	)
	cmd := &cobra.Command{
		Use:   "set-status",
		Short: "Record verification outcomes for a package's domains",
		Long: "With --domain-set-id the caller acts as the verification agent; with --package\n" +
			"the internal status setter is used and any status name is accepted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := requireFlag(status, "status")
			if err != nil {
				return err
			}
			verification := types.VerificationStatus(strings.ToLower(value))
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				var code types.StatusCode
				if strings.TrimSpace(packageName) != "" {
					code, err = env.service.SetDomainVerificationStatusInternal(ctx, packageName, verification, domains)
				} else {
					id, parseErr := parseDomainSetID(domainSetID)
					if parseErr != nil {
						return parseErr
					}
					code, err = env.service.SetDomainVerificationStatus(ctx, id, domains, verification)
				}
				if err == nil {
					printStatus(cmd, code)
				}
				return statusResult(code, err)
			})
		},
	}
	cmd.Flags().StringVar(&domainSetID, "domain-set-id", "", "Domain set id issued to the agent")
	cmd.Flags().StringVar(&packageName, "package", "", "Package name (internal caller)")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "Domains to update")
	cmd.Flags().StringVar(&status, "status", "", "Verification status")
	cmd.MarkFlagsMutuallyExclusive("domain-set-id", "package")
	return cmd
}

func newSelectCommand() *cobra.Command {
	var (
		domainSetID string
		packageName string
		domains     []string
		enabled     bool
		user        string
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select or deselect domains for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				var code types.StatusCode
				if strings.TrimSpace(packageName) != "" {
					code, err = env.service.SetDomainVerificationUserSelectionInternal(ctx, userID, packageName, enabled, domains)
				} else {
					id, parseErr := parseDomainSetID(domainSetID)
					if parseErr != nil {
						return parseErr
					}
					code, err = env.service.SetDomainVerificationUserSelection(ctx, id, domains, enabled, userID)
				}
				if err == nil {
					printStatus(cmd, code)
				}
				return statusResult(code, err)
			})
		},
	}
	cmd.Flags().StringVar(&domainSetID, "domain-set-id", "", "Domain set id of the package")
	cmd.Flags().StringVar(&packageName, "package", "", "Package name (internal caller)")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "Domains to change")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Select (true) or deselect (false)")
	cmd.Flags().StringVar(&user, "user", "0", "User id or \"all\"")
	cmd.MarkFlagsMutuallyExclusive("domain-set-id", "package")
	return cmd
}

func newLinkHandlingCommand() *cobra.Command {
	var (
		packageName string
		allowed     bool
		user        string
		internal    bool
	)
	cmd := &cobra.Command{
		Use:   "link-handling",
		Short: "Allow or disallow a package to handle links for a user",
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
				var code types.StatusCode
				if internal {
					code, err = env.service.SetDomainVerificationLinkHandlingAllowedInternal(ctx, name, allowed, userID)
				} else {
					code, err = env.service.SetDomainVerificationLinkHandlingAllowed(ctx, name, allowed, userID)
				}
				if err == nil {
					printStatus(cmd, code)
				}
				return statusResult(code, err)
			})
		},
	}
	cmd.Flags().StringVar(&packageName, "package", "", "Package name")
	cmd.Flags().BoolVar(&allowed, "allowed", true, "Whether link handling is allowed")
	cmd.Flags().StringVar(&user, "user", "0", "User id or \"all\" (internal only)")
	cmd.Flags().BoolVar(&internal, "internal", false, "Use the internal entry point")
	return cmd
}

func newLegacyCommand() *cobra.Command {
	var (
		packageName string
		user        string
		state       string
	)
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Set the legacy always/never/ask state of a package for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := requireFlag(packageName, "package")
			if err != nil {
				return err
			}
			value, err := requireFlag(state, "state")
			if err != nil {
				return err
			}
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				code, err := env.service.SetLegacyUserState(ctx, name, userID, types.LegacyState(strings.ToLower(value)))
				if err == nil {
					printStatus(cmd, code)
				}
				return statusResult(code, err)
			})
		},
	}
	cmd.Flags().StringVar(&packageName, "package", "", "Package name")
	cmd.Flags().StringVar(&user, "user", "0", "User id")
	cmd.Flags().StringVar(&state, "state", "", "undefined, ask, always, never or always_ask")
	return cmd
}

func newRemoveCommand() *cobra.Command {
	var packageName string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Forget a package and all of its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := requireFlag(packageName, "package")
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				code := env.service.RemovePackage(ctx, name)
				printStatus(cmd, code)
				return statusResult(code, nil)
			})
		},
	}
	cmd.Flags().StringVar(&packageName, "package", "", "Package name")
	return cmd
}
