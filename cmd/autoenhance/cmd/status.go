package cmd

import (
	"github.com/spf13/cobra"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
)

func newStatusCommand() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status <image-id>",
		Short: "Show the processing status of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, _ := cmd.Flags().GetBool("wait")

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			var record *autoenhance.ImageRecord
			if wait {
				record, err = s.client.WaitForImage(cmd.Context(), args[0])
			} else {
				record, err = s.client.CheckImageStatus(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}

	statusCmd.Flags().Bool("wait", false, "Poll until the image is processed")
	return statusCmd
}

func newOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "order <order-id>",
		Short: "Show an order and the status of its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			order, err := s.client.CheckOrderStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), order)
		},
	}
}
