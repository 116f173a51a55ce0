package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
)

var (
	tokenUserID    int64
	tokenEmail     string
	tokenCompanyID int64
	tokenRoles     []string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Access token utilities",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a signed access token",
	Long: `Signs an access token with the configured secret without checking the
user exists. Intended for operators debugging a deployment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID <= 0 || tokenCompanyID <= 0 {
			return fmt.Errorf("--user and --company must be positive")
		}
		roles, err := auth.ParseRoles(tokenRoles)
		if err != nil {
			return err
		}

		codec, err := auth.NewTokenCodec([]byte(cfg.JWT.Secret), cfg.JWT.TTL, auth.WithIssuer(cfg.JWT.Issuer))
		if err != nil {
			return fmt.Errorf("create token codec: %w", err)
		}
		token, err := codec.Issue(tokenUserID, tokenEmail, roles, tokenCompanyID)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	flags := tokenIssueCmd.Flags()
	flags.Int64Var(&tokenUserID, "user", 0, "User id (sub claim)")
	flags.StringVar(&tokenEmail, "email", "", "Email claim")
	flags.Int64Var(&tokenCompanyID, "company", 0, "Company id (tenant claim)")
	flags.StringSliceVar(&tokenRoles, "role", []string{string(auth.RoleMember)}, "Role(s) to embed")
	_ = tokenIssueCmd.MarkFlagRequired("user")
	_ = tokenIssueCmd.MarkFlagRequired("company")

	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}
