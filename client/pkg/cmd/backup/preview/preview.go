package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"nimbus"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewPreviewBackupCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	cmd := &cobra.Command{
		Use:     "preview",
		Short:   "Preview the next backup",
		Long:    "Dry-run the selected profile and list the files that would be copied, updated or deleted",
		Example: "nimbus backup preview",
		Run: func(cmd *cobra.Command, args []string) {
			profileID, err := cmdutil.ResolveProfile(cfg, profileFlag)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.StartLoading("Computing changes...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			result, err := svc.PreviewBackup(ctx, profileID)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"Action", "Path", "Size"})
			appendChanges(tw, result.FilesToCopy)
			appendChanges(tw, result.FilesToUpdate)
			appendChanges(tw, result.FilesToDelete)
			cmdutil.Print("")
			cmdutil.Print(tw.Render())
			cmdutil.Print(fmt.Sprintf("%d files, %s to transfer",
				result.TotalFiles, nimbus.FormatBytes(result.TotalSize)))
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID to preview (defaults to the selected profile)")
	return cmd
}

func appendChanges(tw table.Writer, changes []api.FileChange) {
	for _, next := range changes {
		tw.AppendRow(table.Row{next.Action, next.Path, nimbus.FormatBytes(uint64(next.Size))})
	}
}
