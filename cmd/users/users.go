package users

import "github.com/spf13/cobra"

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage company users",
	Long:  `Commands for managing the users of a company directly from the server.`,
}

func init() {
	createCmd.Flags().Int64Var(&companyFlag, "company", 0, "Id of the company the user joins")
	createCmd.Flags().StringVar(&usernameFlag, "username", "", "Login name of the user")
	createCmd.Flags().StringVar(&displayedNameFlag, "displayed-name", "", "Name shown to other users (defaults to --username)")
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().StringSliceVar(&rolesInput, "role", []string{"MEMBER"}, "Role(s) to assign to the user")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	UsersCmd.AddCommand(createCmd)
}
