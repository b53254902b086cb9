package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
)

type reportOutput struct {
	ImageID    string                       `json:"image_id"`
	Status     int                          `json:"status"`
	Categories []autoenhance.ReportCategory `json:"category"`
}

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report <image-id>",
		Short: "Report a bad enhancement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetStringSlice("category")
			comment, _ := cmd.Flags().GetString("comment")

			categories := make([]autoenhance.ReportCategory, 0, len(raw))
			for _, c := range raw {
				categories = append(categories, autoenhance.ReportCategory(c))
			}
			if err := autoenhance.ValidateCategories(categories); err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			result, err := s.client.ReportEnhancement(cmd.Context(), args[0], categories, comment)
			if err != nil {
				return err
			}
			if !result.OK() {
				return result.Failure
			}
			return writeJSON(cmd.OutOrStdout(), reportOutput{ImageID: args[0], Status: result.StatusCode, Categories: categories})
		},
	}

	reportCmd.Flags().StringSlice("category", nil, fmt.Sprintf("Issue category, repeatable, one of %v", autoenhance.ReportCategories()))
	reportCmd.Flags().String("comment", "", "Free text describing the issue")
	return reportCmd
}
