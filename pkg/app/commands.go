package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"backoffice/pkg/auth"
	"backoffice/pkg/console"
	"backoffice/pkg/models"
	"backoffice/pkg/pages"
	"backoffice/pkg/router"
	"backoffice/pkg/version"
)

func (e *env) loginCommand() *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and open the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := e.open(cmd.Context(), router.LoginPath)
			if err != nil {
				return err
			}
			page, ok := loc.Page.(*pages.LoginPage)
			if !ok {
				return fmt.Errorf("unexpected page at %s", loc.Path)
			}
			return page.Submit(cmd.Context(), creds)
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password")
	return cmd
}

func (e *env) registerCommand() *cobra.Command {
	var reg models.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := e.open(cmd.Context(), auth.RegisterPath)
			if err != nil {
				return err
			}
			page, ok := loc.Page.(*pages.RegisterPage)
			if !ok {
				return fmt.Errorf("unexpected page at %s", loc.Path)
			}
			return page.Submit(cmd.Context(), reg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.FirstName, "first-name", "", "First name")
	f.StringVar(&reg.LastName, "last-name", "", "Last name")
	f.StringVar(&reg.Email, "email", "", "Account email")
	f.StringVar(&reg.Password, "password", "", "Account password")
	f.StringVar(&reg.PhoneNumber, "phone", "", "Phone number")
	f.StringVar(&reg.Role, "role", "staff", "Account role")
	return cmd
}

func (e *env) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.deps.Auth.Logout(cmd.Context())
		},
	}
}

func (e *env) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := e.open(cmd.Context(), pages.ProfilePath)
			return err
		},
	}
}

func (e *env) openCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "open <path>",
		Short:   "Render any dashboard route, e.g. /dashboard/products/3",
		Example: "  backoffice open /dashboard\n  backoffice open /dashboard/order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := e.open(cmd.Context(), args[0])
			return err
		},
	}
}

// entityCommand groups list, get, create, update and delete for one entity.
func (e *env) entityCommand(info pages.Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:   info.Slug,
		Short: "Manage " + strings.ToLower(info.Title),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every " + info.Singular,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := e.open(cmd.Context(), pages.ListPath(info.Slug))
			return err
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one " + info.Singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := e.open(cmd.Context(), pages.DetailPath(info.Slug, args[0]))
			return err
		},
	}

	var yes bool
	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one " + info.Singular + " after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes {
				e.deps.Confirm = console.AlwaysYes{}
			}
			loc, err := e.open(cmd.Context(), pages.ListPath(info.Slug))
			if err != nil {
				return err
			}
			page, ok := loc.Page.(pages.Deleter)
			if !ok {
				return fmt.Errorf("%s cannot delete", loc.Path)
			}
			return page.Delete(cmd.Context(), args[0])
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	cmd.AddCommand(list, get, remove)
	if info.ReadOnly {
		return cmd
	}

	var createData string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a " + info.Singular + " from JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.submit(cmd, pages.CreatePath(info.Slug), createData)
		},
	}
	create.Flags().StringVar(&createData, "data", "", "JSON record, or - to read it from stdin")
	_ = create.MarkFlagRequired("data")

	var updateData string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a " + info.Singular + " from a JSON patch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.submit(cmd, pages.DetailPath(info.Slug, args[0]), updateData)
		},
	}
	update.Flags().StringVar(&updateData, "data", "", "JSON fields to change, or - to read them from stdin")
	_ = update.MarkFlagRequired("data")

	cmd.AddCommand(create, update)
	return cmd
}

// submit opens a form route and hands it the JSON payload.
func (e *env) submit(cmd *cobra.Command, target, data string) error {
	raw := []byte(data)
	if data == "-" {
		b, err := io.ReadAll(e.streams.In)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return errors.New("--data is empty")
	}

	loc, err := e.open(cmd.Context(), target)
	if err != nil {
		return err
	}
	page, ok := loc.Page.(pages.Submitter)
	if !ok {
		return fmt.Errorf("%s has no form", loc.Path)
	}
	return page.SubmitJSON(cmd.Context(), raw)
}

func (e *env) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{bootstrapKey: bootstrapMinimal},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "backoffice version %s\n", version.Version())
			return err
		},
	}
}
