package restore

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"nimbus"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewRestoreCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	var target string
	cmd := &cobra.Command{
		Use:     "restore <remote_path>...",
		Short:   "Restore files from the bucket",
		Long:    "Download one or more remote paths from the profile's bucket into a local folder",
		Example: "nimbus backup restore docs/report.pdf pictures/ --target ~/restored",
		Args:    cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			profileID, err := cmdutil.ResolveProfile(cfg, profileFlag)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			if target == "" {
				cmdutil.PrintE("please specify a target folder with --target")
				return
			}

			cmdutil.StartLoading("Restoring...")
			defer cmdutil.StopLoading()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			op, err := svc.Restore(ctx, profileID, api.RestoreParams{
				RemotePaths: args,
				LocalTarget: target,
			})
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			if op.Status != "completed" {
				cmdutil.PrintE(fmt.Sprintf("restore %s: %s", op.Status, op.ErrorMessage))
				return
			}
			cmdutil.PrintS(fmt.Sprintf("Restore completed! %d files, %s",
				op.FilesTransferred, nimbus.FormatBytes(op.BytesTransferred)))
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID (defaults to the selected profile)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Local folder to restore into")
	return cmd
}
