package delete

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
)

func NewDeleteProfileCmd(svc api.Service) *cobra.Command {
	var profileID string
	cmd := &cobra.Command{
		Use:     "delete",
		Short:   "Delete a profile",
		Long:    "Delete a backup profile and its schedule. Files already in the bucket are kept",
		Example: "nimbus profiles delete --id <profile_id>",
		Run: func(cmd *cobra.Command, args []string) {
			id, err := uuid.Parse(profileID)
			if err != nil {
				cmdutil.PrintE("invalid profile id: " + profileID)
				return
			}

			p := promptui.Prompt{
				Label:     "Are you sure you want to delete this profile",
				IsConfirm: true,
			}
			result, err := p.Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			if !strings.EqualFold(result, "y") && !strings.EqualFold(result, "yes") {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := svc.DeleteProfile(ctx, id); err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			cmdutil.PrintS("Profile deleted!")
		},
	}
	cmd.Flags().StringVarP(&profileID, "id", "i", "", "The ID of the profile to delete")
	return cmd
}
