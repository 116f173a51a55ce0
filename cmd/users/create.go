package users

import (
	"bufio"
	"context"
	"fmt"
	"net/mail"
	"os"

	"github.com/spf13/cobra"

	"github.com/HeorhiiKortunov/CoreTask/cmd/cmdutil"
	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/cache"
	"github.com/HeorhiiKortunov/CoreTask/internal/config"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/user"
)

var (
	companyFlag       int64
	usernameFlag      string
	displayedNameFlag string
	emailFlag         string
	passwordFlag      string
	rolesInput        []string
	stdinFlag         bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user in an existing company",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate required flags
		if companyFlag <= 0 {
			return fmt.Errorf("--company flag is required")
		}
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		roles, err := auth.ParseRoles(rolesInput)
		if err != nil {
			return err
		}
		if len(roles) == 0 {
			return fmt.Errorf("at least one role must be specified using --role")
		}

		password := passwordFlag
		if stdinFlag {
			// Read password from stdin
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		displayedName := displayedNameFlag
		if displayedName == "" {
			displayedName = usernameFlag
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		stack, err := cmdutil.Open(cfg)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := context.Background()
		if _, err := stack.Companies.GetByID(ctx, companyFlag); err != nil {
			return fmt.Errorf("company %d: %w", companyFlag, err)
		}

		svc := user.NewService(stack.Users, cache.New())
		created, err := svc.Create(cmdutil.TenantContext(ctx, companyFlag), user.CreateInput{
			Username:      usernameFlag,
			DisplayedName: displayedName,
			Email:         emailFlag,
			Password:      password,
			Roles:         roles,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d) in company %d with roles %v\n",
			created.Username, created.ID, created.CompanyID, []string(created.Roles))
		return nil
	},
}
