package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"archivist/internal/models"
	"archivist/internal/processor"
)

var (
	processDryRun bool
	processYes    bool
	processInbox  string
)

// processCmd files documents from the inbox (or explicit paths) into the
// knowledge base.
var processCmd = &cobra.Command{
	Use:   "process [file...]",
	Short: "Classify and file documents into the knowledge base",
	Long: `Processes the given files, or everything waiting in the inbox when no
arguments are passed. Shows the planned renames and target folders first and
asks for confirmation unless --yes or --dry-run is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		proc := appInstance.Processor

		paths := args
		if len(paths) == 0 {
			inbox := processInbox
			if inbox == "" {
				inbox = appInstance.Config.Inbox.Path
			}
			if err := processor.EnsureInbox(inbox); err != nil {
				return err
			}
			paths, err = proc.ListPending(inbox)
			if err != nil {
				return err
			}
		}
		if len(paths) == 0 {
			fmt.Println("Nothing to process.")
			return nil
		}

		// Plan everything up front so the user confirms the whole batch.
		var plans []*models.ProcessPlan
		for _, path := range paths {
			plan, err := proc.Plan(cmd.Context(), path)
			if err != nil {
				log.Errorf("skipping %s: %v", path, err)
				continue
			}
			plans = append(plans, plan)
		}
		if len(plans) == 0 {
			return fmt.Errorf("no processable documents among %d file(s)", len(paths))
		}

		renderPlans(plans)

		if processDryRun {
			fmt.Println(color.YellowString("Dry run, nothing moved."))
			return nil
		}
		if !processYes && !confirm(fmt.Sprintf("Move %d file(s)?", len(plans))) {
			fmt.Println("Aborted.")
			return nil
		}

		failures := 0
		for _, plan := range plans {
			res := proc.Execute(plan)
			if res.Err != nil {
				failures++
				fmt.Printf("  - %s: %v\n", color.RedString("ERROR"), res.Err)
				continue
			}
			status := color.GreenString("Filed")
			if res.BackupPath != "" {
				status = color.YellowString("Filed (backed up previous)")
			}
			fmt.Printf("  - %s: %s -> %s\n", status, plan.OriginalName, res.TargetPath)
		}

		if err := proc.KnowledgeBase().WriteStructure(appInstance.Rules); err != nil {
			log.Warnf("failed to refresh structure summary: %v", err)
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failures, len(plans))
		}
		return nil
	},
}

func renderPlans(plans []*models.ProcessPlan) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Original", "New Name", "Target Folder", "Date", "Version", "Note"})
	table.SetBorder(true)
	table.SetRowLine(true)

	for _, p := range plans {
		note := p.Reasoning
		if p.CreateFolder {
			note = "new folder; " + note
		}
		if p.Warning != "" {
			note += "; " + p.Warning
		}
		table.Append([]string{
			p.OriginalName,
			p.NewName,
			p.TargetFolder,
			fmt.Sprintf("%s (%s %.2f)", p.Date, p.DateSource, p.DateConfidence),
			p.Version.String(),
			note,
		})
	}
	table.Render()
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "show the plan without moving files")
	processCmd.Flags().BoolVarP(&processYes, "yes", "y", false, "skip the confirmation prompt")
	processCmd.Flags().StringVar(&processInbox, "inbox", "", "inbox directory (defaults to config inbox.path)")
	rootCmd.AddCommand(processCmd)
}
