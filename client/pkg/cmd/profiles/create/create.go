package create

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
)

var backupModes = []string{"copy", "sync"}

func NewCreateProfileCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new backup profile",
		Long:  "Create a new backup profile. A profile names the folders to back up and the bucket they go to; its name must be unique",
		Run: func(cmd *cobra.Command, args []string) {
			name, err := createNamePrompt().Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			bucket, err := createBucketPrompt().Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			prefix, err := createPrefixPrompt().Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			sources, err := collectSources()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			if len(sources) == 0 {
				cmdutil.PrintE("at least one source folder is required")
				return
			}

			_, mode, err := createModePrompt().Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			param := api.CreateProfileParams{
				Name:    name,
				Bucket:  bucket,
				Prefix:  prefix,
				Sources: sources,
				Mode:    mode,
			}

			cmdutil.StartLoading(fmt.Sprintf("creating profile: %s...", param.Name))
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			profile, err := svc.CreateProfile(ctx, param)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.PrintS("profile created! " + profile.ID.String())
			cmdutil.PrintS("run 'nimbus profiles use -i " + profile.ID.String() + "' to select it")
		},
	}
}

func collectSources() ([]string, error) {
	sources := make([]string, 0)
	for {
		value, err := createSourcePrompt(len(sources)).Run()
		if err != nil {
			return nil, err
		}
		if value == "" {
			return sources, nil
		}
		sources = append(sources, value)
	}
}

func createNamePrompt() *promptui.Prompt {
	return &promptui.Prompt{
		Label: "What's your profile name?",
		Validate: func(s string) error {
			if len(strings.TrimSpace(s)) == 0 {
				return errors.New("please enter a valid name")
			}
			return nil
		},
	}
}

func createBucketPrompt() *promptui.Prompt {
	return &promptui.Prompt{
		Label: "Which S3 bucket should backups go to?",
		Validate: func(s string) error {
			if len(s) == 0 {
				return errors.New("please enter a bucket name")
			}
			return nil
		},
	}
}

func createPrefixPrompt() *promptui.Prompt {
	return &promptui.Prompt{
		Label: "Bucket prefix (optional)",
	}
}

func createSourcePrompt(count int) *promptui.Prompt {
	return &promptui.Prompt{
		Label: fmt.Sprintf("Folder to back up (%d added, empty to finish)", count),
		Validate: func(s string) error {
			if s == "" {
				return nil
			}
			if _, err := os.Stat(s); err != nil {
				return fmt.Errorf("specified folder returned error: %s: %s", s, err.Error())
			}
			return nil
		},
	}
}

func createModePrompt() *promptui.Select {
	return &promptui.Select{
		Label: "Transfer mode (sync mirrors deletions to the bucket)",
		Items: backupModes,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✔ {{ . | green }}",
		},
	}
}
