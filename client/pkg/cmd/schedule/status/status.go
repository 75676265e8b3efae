package status

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewScheduleStatusCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show the backup schedule",
		Example: "nimbus schedule status",
		Run: func(cmd *cobra.Command, args []string) {
			profileID, err := cmdutil.ResolveProfile(cfg, profileFlag)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			sched, err := svc.ScheduleStatus(ctx, profileID)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			if sched == nil || !sched.Enabled {
				cmdutil.Print("No schedule set for this profile")
				return
			}

			cmdutil.Print(fmt.Sprintf("Frequency: %s at %s", sched.Frequency.Kind, sched.Time))
			if sched.LastRun != nil {
				cmdutil.Print(fmt.Sprintf("Last run:  %s", sched.LastRun.Local().Format("02-01-2006 15:04")))
			}
			if sched.NextRun != nil {
				cmdutil.Print(fmt.Sprintf("Next run:  %s", sched.NextRun.Local().Format("02-01-2006 15:04")))
			}
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID (defaults to the selected profile)")
	return cmd
}
