package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func profilesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "profiles",
		Short: "Manage analysis profiles in a workspace",
	}

	c.AddCommand(profilesListCmd())
	return c
}

func profilesListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analysis profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.profiles.ListProfiles(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no profiles found)")
				return nil
			}

			fmt.Printf("Workspace: %s\n\n", ws.root)
			for _, r := range refs {
				table := r.Table
				if table == "" {
					table = ws.cfg.Defaults.Table + " (default)"
				}
				fmt.Printf("- %s  (table: %s)\n", r.Name, table)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}
