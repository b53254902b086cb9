package cmd

import (
	"github.com/spf13/cobra"
)

func newEditCommand() *cobra.Command {
	editCmd := &cobra.Command{
		Use:   "edit <image-id>",
		Short: "Reprocess an image with different options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			result, err := s.client.EditEnhancement(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return saveImage(cmd, args[0], result)
		},
	}

	addOptionFlags(editCmd.Flags(), false)
	editCmd.Flags().StringP("output", "o", "", "Write the image to this file instead of stdout")
	return editCmd
}
