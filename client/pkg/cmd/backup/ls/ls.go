package ls

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

func NewListFilesCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag, path string
	cmd := &cobra.Command{
		Use:     "ls",
		Short:   "Browse backed up files",
		Long:    "List files stored in the cloud destination of the selected profile",
		Example: "nimbus backup ls --path photos/2024",
		Run: func(cmd *cobra.Command, args []string) {
			profileID, err := cmdutil.ResolveProfile(cfg, profileFlag)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			files, err := svc.ListFiles(ctx, profileID, path)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"Path", "Size", "Modified"})
			for _, next := range files {
				size := nimbus.FormatBytes(uint64(next.Size))
				if next.IsDir {
					size = "dir"
				}
				tw.AppendRow(table.Row{
					next.Path,
					size,
					next.ModTime.Local().Format("02-01-2006 15:04"),
				})
			}
			cmdutil.Print("")
			cmdutil.Print(tw.Render())
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID (defaults to the selected profile)")
	cmd.Flags().StringVar(&path, "path", "", "Path inside the destination to list")
	return cmd
}
