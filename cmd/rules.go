package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// rulesCmd lists the active classification rule set.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active classification categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		catalog := appInstance.Rules

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Priority", "Category", "Keywords", "Target Patterns"})
		table.SetBorder(true)
		table.SetRowLine(true)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, cat := range catalog.Categories {
			table.Append([]string{
				strconv.Itoa(cat.Priority),
				cat.Name,
				strings.Join(cat.Keywords, ", "),
				strings.Join(cat.TargetPatterns, ", "),
			})
		}
		table.Render()

		fmt.Printf("Semantic threshold: %.2f  Allow new folders: %v  Force existing: %v\n",
			catalog.Strategy.SemanticThreshold,
			catalog.Strategy.AllowNewFolders,
			catalog.Strategy.ForceExisting)
		fmt.Printf("Fallback folders: %s\n", strings.Join(catalog.FallbackFolders, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
