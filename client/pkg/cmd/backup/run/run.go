package run

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

func NewRunBackupCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a backup now",
		Long:    "Run a backup of the selected profile immediately and wait for it to finish",
		Example: "nimbus backup run",
		Run: func(cmd *cobra.Command, args []string) {
			profileID, err := cmdutil.ResolveProfile(cfg, profileFlag)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.StartLoading("Backing up...")
			defer cmdutil.StopLoading()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			op, err := svc.RunBackup(ctx, profileID)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			if op.Status != "completed" {
				cmdutil.PrintE(fmt.Sprintf("backup %s: %s", op.Status, op.ErrorMessage))
				return
			}
			cmdutil.PrintS(fmt.Sprintf("Backup completed! %d files, %s transferred",
				op.FilesTransferred, nimbus.FormatBytes(op.BytesTransferred)))
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID to back up (defaults to the selected profile)")
	return cmd
}
