package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
)

func NewSyncLogsCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Short:   "Fold scheduled-backup logs into the history",
		Long:    "Scan the log files written by OS-scheduled backups and record any runs missing from the operation history",
		Example: "nimbus logs sync",
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.StartLoading("Syncing...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			count, err := svc.SyncLogs(ctx)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			cmdutil.PrintS(fmt.Sprintf("Done! %d new operations recorded", count))
		},
	}
}
