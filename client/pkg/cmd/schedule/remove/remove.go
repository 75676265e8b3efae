package remove

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewRemoveScheduleCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	cmd := &cobra.Command{
		Use:     "remove",
		Short:   "Remove the backup schedule",
		Long:    "Stop automatic backups for the selected profile. Manual backups keep working",
		Example: "nimbus schedule remove",
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
			if err := svc.RemoveSchedule(ctx, profileID); err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			cmdutil.PrintS("Schedule removed!")
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID (defaults to the selected profile)")
	return cmd
}
