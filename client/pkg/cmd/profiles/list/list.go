package list

import (
	"context"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
)

func NewListProfilesCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backup profiles",
		Long:  "List all the backup profiles on your nimbus server",
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			all, err := svc.ListProfiles(ctx)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			header := table.Row{"ID", "Name", "Destination", "Sources", "Schedule", "Time Created"}
			tw := table.NewWriter()
			tw.AppendHeader(header)
			for _, next := range all {
				destination := next.Remote + ":" + next.Bucket
				if next.Prefix != "" {
					destination += "/" + next.Prefix
				}

				row := table.Row{
					next.ID.String(),
					next.Name,
					destination,
					strings.Join(next.Sources, ", "),
					describeSchedule(next.Schedule),
					next.CreatedAt.Format("02-01-2006"),
				}
				tw.AppendRow(row)
				tw.AppendSeparator()
			}
			cmdutil.Print("")
			cmdutil.Print(tw.Render())
		},
	}
}

func describeSchedule(s *api.Schedule) string {
	if s == nil || !s.Enabled {
		return "none"
	}
	return s.Frequency.Kind + " at " + s.Time
}
