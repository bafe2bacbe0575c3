package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"archivist/internal/catalog"
)

// structureCmd regenerates the knowledge-base summary file.
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Regenerate the knowledge-base structure summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		kb := appInstance.Processor.KnowledgeBase()
		if err := kb.WriteStructure(appInstance.Rules); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", filepath.Join(kb.Root(), catalog.StructureFileName))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(structureCmd)
}
