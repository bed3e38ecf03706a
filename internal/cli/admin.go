package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"visit_tracker/internal/accounts"
	"visit_tracker/internal/models"
)

type adminView struct {
	ID       uint   `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	FullName string `json:"full_name" yaml:"full_name"`
	Role     string `json:"role" yaml:"role"`
}

func newAdminView(a models.Admin) adminView {
	return adminView{ID: a.ID, Username: a.Username, FullName: a.FullName, Role: a.Role}
}

func adminTable(admins []adminView) table {
	t := table{header: []string{"ID", "USERNAME", "FULL NAME", "ROLE"}}
	for _, a := range admins {
		t.rows = append(t.rows, []string{strconv.FormatUint(uint64(a.ID), 10), a.Username, a.FullName, a.Role})
	}
	return t
}

// NewAdminCommand creates the admin command group.
func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Provision desk accounts",
	}
	cmd.AddCommand(newAdminCreateCommand(opts))
	return cmd
}

func newAdminCreateCommand(opts *RootOptions) *cobra.Command {
	var in accounts.NewAdmin

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a desk account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.DB()
			if err != nil {
				return err
			}
			admin, err := accounts.Create(cmd.Context(), db, in)
			if err != nil {
				return fmt.Errorf("create admin %q: %w", in.Username, err)
			}
			view := newAdminView(*admin)
			return render(cmd.OutOrStdout(), opts.Format, view, adminTable([]adminView{view}))
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&in.Role, "role", models.RoleAdmin, "admin or superadmin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
