package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"archivist/internal/processor"
)

// doctorCmd checks that the pieces archivist needs are in place.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, knowledge base and oracle availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config
		ok := true

		root := cfg.KnowledgeBase.RootPath
		if info, err := os.Stat(root); err != nil {
			ok = false
			fmt.Printf("%s knowledge base root %s: %v\n", color.RedString("FAIL"), root, err)
		} else if !info.IsDir() {
			ok = false
			fmt.Printf("%s knowledge base root %s is not a directory\n", color.RedString("FAIL"), root)
		} else {
			folders, err := appInstance.Processor.KnowledgeBase().Scan()
			if err != nil {
				ok = false
				fmt.Printf("%s knowledge base scan: %v\n", color.RedString("FAIL"), err)
			} else {
				fmt.Printf("%s knowledge base root %s (%d folders)\n", color.GreenString("OK"), root, len(folders))
			}
		}

		if _, err := os.Stat(cfg.Rules.Path); err != nil {
			fmt.Printf("%s rules file %s missing, using built-in defaults\n", color.YellowString("WARN"), cfg.Rules.Path)
		} else {
			fmt.Printf("%s rules file %s\n", color.GreenString("OK"), cfg.Rules.Path)
		}
		fmt.Printf("%s %d categories loaded\n", color.GreenString("OK"), len(appInstance.Rules.Categories))

		if appInstance.Oracle.Enabled() {
			fmt.Printf("%s oracle enabled (provider %s, model %s)\n",
				color.GreenString("OK"), cfg.LLM.Provider, cfg.LLM.Model)
		} else {
			fmt.Printf("%s oracle disabled (no API key), rule-based classification only\n", color.YellowString("WARN"))
		}

		if _, err := os.Stat(cfg.Inbox.Path); err != nil {
			fmt.Printf("%s inbox %s missing, run \"archivist init\"\n", color.YellowString("WARN"), cfg.Inbox.Path)
		} else {
			pending, err := appInstance.Processor.ListPending(cfg.Inbox.Path)
			if err != nil {
				ok = false
				fmt.Printf("%s inbox %s: %v\n", color.RedString("FAIL"), cfg.Inbox.Path, err)
			} else {
				fmt.Printf("%s inbox %s (%d pending)\n", color.GreenString("OK"), cfg.Inbox.Path, len(pending))
			}
		}

		if !ok {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

// initCmd bootstraps the working directories.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the inbox and knowledge-base directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config

		if err := os.MkdirAll(cfg.KnowledgeBase.RootPath, 0o755); err != nil {
			return fmt.Errorf("create knowledge base root: %w", err)
		}
		if err := processor.EnsureInbox(cfg.Inbox.Path); err != nil {
			return err
		}
		if err := appInstance.Processor.KnowledgeBase().WriteStructure(appInstance.Rules); err != nil {
			return err
		}
		fmt.Printf("Initialized knowledge base at %s and inbox at %s\n",
			cfg.KnowledgeBase.RootPath, cfg.Inbox.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
}
