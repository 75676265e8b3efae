package initcmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/auth"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewConfigInitCmd(svc api.Pinger) *cobra.Command {
	var host, accessKey string
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Set nimbus configuration",
		Long:    "Set nimbus configuration",
		Example: "nimbus config init --host <http://127.0.0.1:4666> --access-key <key>",
		Run: func(cmd *cobra.Command, args []string) {
			uri, err := url.Parse(host)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			if uri.Scheme != "http" && uri.Scheme != "https" {
				cmdutil.PrintE("Invalid host: expected a http(s) url")
				return
			}

			cmdutil.StartLoading("Running test...")
			defer cmdutil.StopLoading()

			serverUrl := toURL(uri)
			if err := svc.Ping(cmd.Context(), serverUrl, accessKey); err != nil {
				color.Cyan(err.Error())
				return
			}

			current, err := config.Parse()
			if err != nil {
				current = config.Config{}
			}
			current.Host = serverUrl
			if err := config.Save(current); err != nil {
				cmdutil.Print(fmt.Sprintf("Failed to save config: %s", color.RedString(err.Error())))
				return
			}

			if len(accessKey) > 0 {
				if err := auth.Save(accessKey); err != nil {
					cmdutil.Print(fmt.Sprintf("Failed to save access key: %s", color.RedString(err.Error())))
					return
				}
			}

			_, _ = fmt.Fprintln(os.Stdout, fmt.Sprintf("\n%s: Configuration set successfully", color.GreenString("Test passed")))
		},
	}
	cmd.Flags().StringVarP(&host, "host", "i", "", "nimbus server host url")
	cmd.Flags().StringVarP(&accessKey, "access-key", "a", "", "nimbus server access key")
	return cmd
}

func toURL(u *url.URL) string {
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
