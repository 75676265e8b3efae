package set

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewSetScheduleCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	var frequency string
	var at string
	var weekday int
	var dayOfMonth int

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Set the backup schedule",
		Long:    "Schedule automatic backups for the selected profile. The time is local wall clock, HH:MM",
		Example: "nimbus schedule set --frequency weekly --weekday 1 --at 02:30",
		Run: func(cmd *cobra.Command, args []string) {
			profileID, err := cmdutil.ResolveProfile(cfg, profileFlag)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			params := api.SetScheduleParams{
				Frequency:  frequency,
				Weekday:    weekday,
				DayOfMonth: dayOfMonth,
				Time:       at,
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			sched, err := svc.SetSchedule(ctx, profileID, params)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			message := "Backup schedule updated!"
			if sched.NextRun != nil {
				message += fmt.Sprintf(" Next run: %s", sched.NextRun.Local().Format("02-01-2006 15:04"))
			}
			cmdutil.PrintS(message)
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID (defaults to the selected profile)")
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "daily", "How often to back up: daily, weekly or monthly")
	cmd.Flags().StringVarP(&at, "at", "a", "02:00", "Local time of day to run, HH:MM")
	cmd.Flags().IntVarP(&weekday, "weekday", "w", 0, "Day of week for weekly schedules, 0 = Sunday")
	cmd.Flags().IntVarP(&dayOfMonth, "day", "d", 1, "Day of month for monthly schedules, 1-31")
	return cmd
}
