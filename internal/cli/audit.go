package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/wire"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the audit trail",
	Long:  "View, search, and prune the audit trail of store mutations",
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent activity",
	Long:  "Show recent audit entries (default 50)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")
		entityType, _ := cmd.Flags().GetString("type")
		action, _ := cmd.Flags().GetString("action")
		follow, _ := cmd.Flags().GetBool("follow")

		if limit <= 0 {
			limit = 50
		}

		filters := primary.LogFilters{
			ActorID:    sessionID,
			EntityType: entityType,
			Action:     action,
			Limit:      limit,
		}

		// Initial fetch
		entries, err := wire.LogService().ListLogs(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to fetch audit entries: %w", err)
		}

		printAuditEntries(entries)

		// If --follow, poll for new entries
		if follow {
			var lastTimestamp string
			if len(entries) > 0 {
				lastTimestamp = entries[0].Timestamp
			}

			for {
				time.Sleep(1 * time.Second)

				newEntries, err := wire.LogService().ListLogs(ctx, filters)
				if err != nil {
					fmt.Printf("Error fetching audit entries: %v\n", err)
					continue
				}

				// Print only entries newer than lastTimestamp
				for i := len(newEntries) - 1; i >= 0; i-- {
					entry := newEntries[i]
					if lastTimestamp == "" || entry.Timestamp > lastTimestamp {
						printAuditEntry(entry)
						if entry.Timestamp > lastTimestamp {
							lastTimestamp = entry.Timestamp
						}
					}
				}
			}
		}

		return nil
	},
}

var auditShowCmd = &cobra.Command{
	Use:   "show [entity-id]",
	Short: "Show activity for a specific entity",
	Long:  "Show audit history for a specific entity (e.g., FEAT-001, C2)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sessionID, _ := cmd.Flags().GetString("session")
		limit, _ := cmd.Flags().GetInt("limit")

		filters := primary.LogFilters{
			ActorID: sessionID,
			Limit:   limit,
		}

		// If entity ID provided, filter by it
		if len(args) > 0 {
			filters.EntityID = args[0]
		}

		entries, err := wire.LogService().ListLogs(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to fetch audit entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries found.")
			return nil
		}

		printAuditEntries(entries)
		return nil
	},
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old audit entries",
	Long:  "Delete audit entries older than the specified number of days (default 30)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		days, _ := cmd.Flags().GetInt("days")

		if days <= 0 {
			days = 30
		}

		count, err := wire.LogService().PruneLogs(ctx, days)
		if err != nil {
			return fmt.Errorf("failed to prune audit entries: %w", err)
		}

		if count == 0 {
			fmt.Printf("No audit entries older than %d days found.\n", days)
		} else {
			fmt.Printf("Pruned %d audit entries older than %d days.\n", count, days)
		}
		return nil
	},
}

func printAuditEntries(entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("No audit entries found.")
		return
	}

	fmt.Printf("Found %d audit entries:\n\n", len(entries))

	// Print in reverse order (oldest first) for tail view
	for i := len(entries) - 1; i >= 0; i-- {
		printAuditEntry(entries[i])
	}
}

func printAuditEntry(entry *primary.LogEntry) {
	// Format: timestamp | session | action | entity_type/entity_id | field changes
	actorStr := entry.ActorID
	if actorStr == "" {
		actorStr = "-"
	}

	actionIcon := getActionIcon(entry.Action)

	// Base line
	fmt.Printf("%s | %-12s | %s %s | %s/%s",
		formatTimestamp(entry.Timestamp),
		actorStr,
		actionIcon,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
	)

	// Field changes for updates
	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Printf(" | %s: %s -> %s", entry.FieldName, entry.OldValue, entry.NewValue)
	}

	fmt.Println()
}

func getActionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// AuditCmd returns the audit command with all subcommands attached.
func AuditCmd() *cobra.Command {
	// audit tail
	auditTailCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")
	auditTailCmd.Flags().String("session", "", "Filter by session ID")
	auditTailCmd.Flags().String("type", "", "Filter by entity type")
	auditTailCmd.Flags().String("action", "", "Filter by action (create, update, delete)")
	auditTailCmd.Flags().BoolP("follow", "f", false, "Follow mode: poll for new entries")

	// audit show
	auditShowCmd.Flags().String("session", "", "Filter by session ID")
	auditShowCmd.Flags().IntP("limit", "n", 100, "Maximum entries to show")

	// audit prune
	auditPruneCmd.Flags().Int("days", 30, "Delete entries older than N days")

	auditCmd.AddCommand(auditTailCmd)
	auditCmd.AddCommand(auditShowCmd)
	auditCmd.AddCommand(auditPruneCmd)

	return auditCmd
}
