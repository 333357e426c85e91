package cli

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/jrsteele09/go-task-client/internal/output"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/users"
	"github.com/spf13/cobra"
)

// User management maps to the admin destination, so every subcommand is
// gated on the role table before a request leaves the client.
const usersDestination = "/admin/users"

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users (admin roles only)",
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE:    runUserList,
}

var userGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserGet,
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE:  runUserCreate,
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserUpdate,
}

var userRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRm,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd, userGetCmd, userCreateCmd, userUpdateCmd, userRmCmd)

	userListCmd.Flags().Int("page", 0, "page number")
	userListCmd.Flags().Int("page-size", 0, "results per page")
	userListCmd.Flags().String("search", "", "search term")
	userListCmd.Flags().Bool("json", false, "output as JSON")

	userCreateCmd.Flags().String("username", "", "username")
	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().String("email", "", "email address")
	userCreateCmd.Flags().String("role", string(session.RoleUser), "role (user, admin, super_admin)")
	userCreateCmd.Flags().String("password", "", "initial password")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")

	userUpdateCmd.Flags().String("name", "", "display name")
	userUpdateCmd.Flags().String("email", "", "email address")
	userUpdateCmd.Flags().String("role", "", "role (user, admin, super_admin)")
}

func runUserList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize(usersDestination)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	search, _ := cmd.Flags().GetString("search")

	listed, err := app.users.List(cmd.Context(), users.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
	})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	}

	table := output.NewTable([]string{"ID", "USERNAME", "NAME", "ROLE"})
	for _, user := range listed.Results {
		table.AddRow([]string{
			strconv.FormatInt(user.ID, 10),
			user.Username,
			user.Name,
			string(user.Role),
		})
	}
	table.Render()
	app.printer.Info("%d of %d users", len(listed.Results), listed.Count)
	return nil
}

func runUserGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize(usersDestination)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	user, err := app.users.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	app.printer.Print("%s (%s)", app.printer.Bold(user.Username), user.Role)
	if user.Name != "" {
		app.printer.Print("name: %s", user.Name)
	}
	if user.Email != "" {
		app.printer.Print("email: %s", user.Email)
	}
	return nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize(usersDestination)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	username, _ := cmd.Flags().GetString("username")
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	role, _ := cmd.Flags().GetString("role")
	password, _ := cmd.Flags().GetString("password")

	created, err := app.users.Create(cmd.Context(), users.User{
		Username: username,
		Name:     name,
		Email:    email,
		Role:     session.Role(role),
		Password: password,
	})
	if err != nil {
		return err
	}
	app.printer.Success("created user %d: %s", created.ID, created.Username)
	return nil
}

func runUserUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize(usersDestination)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	role, _ := cmd.Flags().GetString("role")

	updated, err := app.users.Update(cmd.Context(), id, users.User{
		Name:  name,
		Email: email,
		Role:  session.Role(role),
	})
	if err != nil {
		return err
	}
	app.printer.Success("updated user %d", updated.ID)
	return nil
}

func runUserRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize(usersDestination)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := app.users.Delete(cmd.Context(), id); err != nil {
		return err
	}
	app.printer.Success("deleted user %d", id)
	return nil
}
