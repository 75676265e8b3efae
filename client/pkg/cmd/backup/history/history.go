package history

import (
	"context"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"nimbus"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewHistoryCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show the operation history",
		Long:    "List recorded backup, restore and preview operations for the selected profile, newest first",
		Example: "nimbus backup history",
		Run: func(cmd *cobra.Command, args []string) {
			profileID, err := cmdutil.ResolveProfile(cfg, profileFlag)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			ops, err := svc.History(ctx, profileID)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"Started", "Type", "Status", "Files", "Bytes", "Error"})
			for _, next := range ops {
				tw.AppendRow(table.Row{
					next.StartedAt.Local().Format("02-01-2006 15:04"),
					next.OperationType,
					next.Status,
					next.FilesTransferred,
					nimbus.FormatBytes(next.BytesTransferred),
					next.ErrorMessage,
				})
			}
			cmdutil.Print("")
			cmdutil.Print(tw.Render())
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID (defaults to the selected profile)")
	return cmd
}
