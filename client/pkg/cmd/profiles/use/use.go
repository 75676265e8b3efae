package use

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
	"nimbus/client/internal/config"
)

func NewUseProfileCmd(svc api.Service) *cobra.Command {
	var profileID string
	cmd := &cobra.Command{
		Use:   "use",
		Short: "Select a profile",
		Long:  "Select the profile subsequent backup, schedule and restore commands act on. The selection is stored in ~/.nimbus.yml and marked active on the server",
		Run: func(cmd *cobra.Command, args []string) {
			id, err := uuid.Parse(profileID)
			if err != nil {
				cmdutil.Print(fmt.Sprintf("Invalid profile id: %s", color.RedString(profileID)))
				return
			}

			cmdutil.StartLoading("Working...")
			defer cmdutil.StopLoading()

			profile, err := svc.GetProfile(cmd.Context(), id)
			if err != nil {
				cmdutil.Print(fmt.Sprintf("failed to fetch profile: %s", color.RedString(err.Error())))
				return
			}

			if err := svc.ActivateProfile(cmd.Context(), id); err != nil {
				cmdutil.Print(fmt.Sprintf("failed to activate profile: %s", color.RedString(err.Error())))
				return
			}

			cfg, err := config.Parse()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			cfg.ProfileID = profile.ID
			if err := config.Save(cfg); err != nil {
				cmdutil.Print(fmt.Sprintf("failed to save config: %s", color.RedString(err.Error())))
				return
			}

			println()
			cmdutil.Print(fmt.Sprintf("Now using profile: %s", color.GreenString(profile.Name)))
		},
	}
	cmd.Flags().StringVarP(&profileID, "id", "i", "", "The ID of the profile to use")
	return cmd
}
