package storage

import (
	"context"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/cmdutil"
)

func NewStorageCmd(svc api.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Configure cloud storage credentials",
		Long:  "Store the S3 credentials the server backs up with. The bucket is verified before the credentials are saved",
		Run: func(cmd *cobra.Command, args []string) {
			accessKeyID, err := requiredPrompt("AWS access key id").Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			secretKey, err := secretPrompt("AWS secret access key").Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			region, err := requiredPrompt("Region (e.g. us-east-1)").Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			bucket, err := requiredPrompt("Bucket").Run()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			cmdutil.StartLoading("Verifying bucket access...")
			defer cmdutil.StopLoading()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err = svc.ConfigureStorage(ctx, api.ConfigureStorageParams{
				AccessKeyID: accessKeyID,
				SecretKey:   secretKey,
				Region:      region,
				Bucket:      bucket,
			})
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			cmdutil.PrintS("Storage configured!")
		},
	}
}

func requiredPrompt(label string) *promptui.Prompt {
	return &promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if len(s) == 0 {
				return errors.New("a value is required")
			}
			return nil
		},
	}
}

func secretPrompt(label string) *promptui.Prompt {
	p := requiredPrompt(label)
	p.Mask = '*'
	return p
}
