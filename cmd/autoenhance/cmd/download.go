package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
)

const (
	sizePreview = "preview"
	sizeWeb     = "web"
	sizeFull    = "full"
)

type savedImage struct {
	ImageID string `json:"image_id"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
}

func newDownloadCommand() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download <image-id>",
		Short: "Download a preview or enhanced image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, _ := cmd.Flags().GetString("size")
			switch size {
			case sizePreview, sizeWeb, sizeFull:
			default:
				return fmt.Errorf("--size must be one of %s, %s or %s, got %q", sizePreview, sizeWeb, sizeFull, size)
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			var result *autoenhance.ImageResult
			switch size {
			case sizePreview:
				result, err = s.client.PreviewImage(cmd.Context(), args[0])
			case sizeWeb:
				result, err = s.client.WebOptimisedImage(cmd.Context(), args[0])
			default:
				result, err = s.client.FullResolutionImage(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return saveImage(cmd, args[0], result)
		},
	}

	downloadCmd.Flags().String("size", sizePreview, "Which image to fetch: preview, web or full")
	downloadCmd.Flags().StringP("output", "o", "", "Write the image to this file instead of stdout")
	return downloadCmd
}

// saveImage writes the payload to --output, or raw to stdout when unset.
func saveImage(cmd *cobra.Command, imageID string, result *autoenhance.ImageResult) error {
	if !result.OK() {
		return result.Failure
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := cmd.OutOrStdout().Write(result.Image)
		return err
	}

	if err := os.WriteFile(output, result.Image, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return writeJSON(cmd.OutOrStdout(), savedImage{ImageID: imageID, Path: output, Bytes: len(result.Image)})
}
