package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypted S3 backups of the list",
		Long: `Backups are encrypted with LISTIFY_BACKUP_PASSPHRASE and stored in the
bucket named by LISTIFY_BACKUP_S3_BUCKET.`,
	}
	cmd.AddCommand(newBackupNowCmd(app))
	cmd.AddCommand(newBackupRestoreCmd(app))
	cmd.AddCommand(newBackupListCmd(app))
	cmd.AddCommand(newBackupHistoryCmd(app))
	cmd.AddCommand(newBackupShowCmd(app))
	return cmd
}

func newBackupNowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Upload a snapshot of the current list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			res, err := app.backupManager(sess).RunNow(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, res, fmt.Sprintf("Uploaded %s (%d items, %d bytes)", res.Key, res.ItemCount, res.SizeBytes))
		},
	}
}

func newBackupRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore KEY",
		Short: "Replace the list with a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			n, err := app.backupManager(sess).Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"key": args[0], "items": n}, fmt.Sprintf("Restored %d items from %s", n, args[0]))
		},
	}
}

func newBackupListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots in the bucket, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			objects, err := app.backupManager(sess).List(cmd.Context())
			if err != nil {
				return err
			}
			if app.wantJSON() {
				return writeJSON(cmd, app, objects)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, o := range objects {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.SizeBytes, o.LastModified.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func newBackupHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show backups recorded in the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			records, err := app.backupManager(sess).History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if app.wantJSON() {
				return writeJSON(cmd, app, records)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tITEMS\tKEY\tCREATED\tTOOK")
			for _, b := range records {
				took := "-"
				if b.Status.Terminal() && b.CompletedAt != nil {
					took = b.Duration().Round(time.Millisecond).String()
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", b.ID, b.Status, b.ItemCount, b.Key, b.CreatedAt.Format("2006-01-02 15:04:05"), took)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to show")
	return cmd
}

func newBackupShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one recorded backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			b, err := app.backupManager(sess).Record(cmd.Context(), id)
			if err != nil {
				return err
			}
			if app.wantJSON() {
				return writeJSON(cmd, app, b)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backup %d: %s\n", b.ID, b.Status)
			fmt.Fprintf(out, "  key:     %s\n", b.Key)
			fmt.Fprintf(out, "  items:   %d (%d bytes)\n", b.ItemCount, b.SizeBytes)
			fmt.Fprintf(out, "  created: %s\n", b.CreatedAt.Format(time.RFC3339))
			if b.Status.Terminal() && b.CompletedAt != nil {
				fmt.Fprintf(out, "  took:    %s\n", b.Duration().Round(time.Millisecond))
			}
			if b.Error != "" {
				fmt.Fprintf(out, "  error:   %s\n", b.Error)
			}
			return nil
		},
	}
}
