package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nick-merrill/life-expectancy/internal/usecase"
)

func validateCmd() *cobra.Command {
	var workspace string
	var table string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a life table (no statistics)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				if table != "" && looksLikePath(table) && fileExists(table) {
					ws = standaloneWorkspace(table)
				} else {
					return err
				}
			}

			tablePath, err := resolveTablePath(ws, table)
			if err != nil {
				return err
			}

			uc := usecase.NewValidateTable(ws.tables)
			t, err := uc.Execute(cmd.Context(), tablePath)
			if err != nil {
				return err
			}

			survivors, _ := t.SurvivorsAt(t.MinAge())

			fmt.Println("OK")
			fmt.Printf("Table:  %s\n", t.Name)
			fmt.Printf("Rows:   %d\n", len(t.Rows))
			fmt.Printf("Ages:   %d-%d\n", t.MinAge(), t.MaxAge())
			fmt.Printf("Cohort: %s\n", groupThousands(survivors))
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&table, "table", "t", "", "Life table name or CSV path (required)")

	_ = c.MarkFlagRequired("table")
	return c
}
