package status

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"nimbus"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
)

func NewStatusCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			st, err := svc.Status(ctx)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.Print("")
			cmdutil.Print(fmt.Sprintf("Server version: %s", st.Version))
			cmdutil.Print(fmt.Sprintf("Profiles:       %d", st.Profiles))
			cmdutil.Print(fmt.Sprintf("Data directory: %s", st.DataDir))
			cmdutil.Print(fmt.Sprintf("Disk:           %s free of %s (%.1f%% used)",
				nimbus.FormatBytes(st.DiskFree), nimbus.FormatBytes(st.DiskTotal), st.DiskUsedPct))
			if st.RcloneVersion != "" {
				cmdutil.Print(fmt.Sprintf("rclone:         %s", st.RcloneVersion))
			}
		},
	}
}
