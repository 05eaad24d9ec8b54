package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"newsreel/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the render queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueShowCommand(ctx))
	cmd.AddCommand(newQueueCancelCommand(ctx))
	cmd.AddCommand(newQueueRetryCommand(ctx))
	cmd.AddCommand(newQueueRemoveCommand(ctx))
	cmd.AddCommand(newQueueClearCommand(ctx))
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued render jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			var statuses []queue.Status
			if statusFlag != "" {
				status, ok := queue.ParseStatus(statusFlag)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFlag)
				}
				statuses = append(statuses, status)
			}

			items, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				progress := fmt.Sprintf("%.0f%%", item.ProgressPercent)
				if item.Status.IsTerminal() {
					progress = ""
				}
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					truncate(item.Topic, 32),
					item.Style,
					string(item.Status),
					progress,
					truncate(item.ErrorMessage, 40),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Topic", "Style", "Status", "Progress", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|job-id>",
		Short: "Show full details for one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			item, err := resolveItem(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s (item %d)\n", item.JobID, item.ID)
			fmt.Fprintf(out, "  Topic:    %s\n", item.Topic)
			fmt.Fprintf(out, "  Style:    %s\n", item.Style)
			fmt.Fprintf(out, "  Status:   %s\n", item.Status)
			fmt.Fprintf(out, "  Image:    %s\n", item.ImagePath)
			if item.MusicPath != "" {
				fmt.Fprintf(out, "  Music:    %s\n", item.MusicPath)
			}
			if item.ProgressStage != "" {
				fmt.Fprintf(out, "  Progress: %s %.0f%% %s\n", item.ProgressStage, item.ProgressPercent, item.ProgressMessage)
			}
			if item.AudioSeconds > 0 {
				fmt.Fprintf(out, "  Audio:    %.2fs via %s\n", item.AudioSeconds, item.SynthProvider)
			}
			if item.FinalFile != "" {
				fmt.Fprintf(out, "  Final:    %s\n", item.FinalFile)
			}
			if item.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:    %s\n", item.ErrorMessage)
			}
			fmt.Fprintf(out, "  Created:  %s\n", item.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Updated:  %s\n", item.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newQueueCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id|job-id>",
		Short: "Request cancellation of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			item, err := resolveItem(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			if err := store.RequestCancel(cmd.Context(), item.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for job %s\n", item.JobID)
			return nil
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id|job-id>",
		Short: "Reset a failed job for another attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			item, err := resolveItem(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			if err := store.RetryFailed(cmd.Context(), item.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s reset for retry\n", item.JobID)
			return nil
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id> [id...]",
		Short: "Remove jobs from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			for _, arg := range args {
				id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid item id %q", arg)
				}
				if err := store.Remove(cmd.Context(), id); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d not removed: %v\n", id, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d removed\n", id)
			}
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completed, failed, all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear queue items in bulk",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			var removed int64
			switch {
			case completed:
				removed, err = store.ClearCompleted(cmd.Context())
			case failed:
				removed, err = store.ClearFailed(cmd.Context())
			case all:
				removed, err = store.Clear(cmd.Context())
			default:
				return fmt.Errorf("one of --completed, --failed, or --all is required")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d items\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Remove completed items")
	cmd.Flags().BoolVar(&failed, "failed", false, "Remove failed items")
	cmd.Flags().BoolVar(&all, "all", false, "Remove everything")
	return cmd
}

// resolveItem accepts either a numeric item ID or a job UUID.
func resolveItem(ctx context.Context, store *queue.Store, arg string) (*queue.Item, error) {
	arg = strings.TrimSpace(arg)
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		item, err := store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("item %d not found", id)
		}
		return item, nil
	}
	item, err := store.FindByJobID(ctx, arg)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("job %q not found", arg)
	}
	return item, nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	if limit <= 3 {
		return value[:limit]
	}
	return value[:limit-3] + "..."
}
