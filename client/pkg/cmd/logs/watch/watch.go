package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewWatchCmd(svc api.Service, cfg config.Config) *cobra.Command {
	var profileFlag string
	var all bool
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Stream backup events",
		Long:    "Stream backup lifecycle events from the server until interrupted",
		Example: "nimbus logs watch --all",
		Run: func(cmd *cobra.Command, args []string) {
			profileID := ""
			if !all {
				id, err := cmdutil.ResolveProfile(cfg, profileFlag)
				if err != nil {
					cmdutil.PrintE(err.Error())
					return
				}
				profileID = id.String()
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			events, err := svc.WatchEvents(ctx, profileID)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.Print("Watching... press Ctrl+C to stop")
			for ev := range events {
				line := fmt.Sprintf("%s [%s] %s",
					ev.At.Local().Format("15:04:05"), ev.Kind, ev.Message)
				if ev.Kind == "backup_failed" {
					cmdutil.Print(color.RedString(line))
				} else {
					cmdutil.Print(line)
				}
			}
		},
	}
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile ID (defaults to the selected profile)")
	cmd.Flags().BoolVarP(&all, "all", "A", false, "Watch events from every profile")
	return cmd
}
