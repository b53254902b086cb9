package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
	"github.com/instant-hdr/autoenhance-go/internal/source"
)

const sourceTimeout = 60 * time.Second

type uploadOutput struct {
	Source    string                   `json:"source"`
	ImageName string                   `json:"image_name"`
	ImageID   string                   `json:"image_id"`
	OrderID   string                   `json:"order_id,omitempty"`
	Status    int                      `json:"status"`
	Image     *autoenhance.ImageRecord `json:"image,omitempty"`
}

func newUploadCommand() *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload <path-or-url>...",
		Short: "Register and upload images for enhancement",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runUpload,
	}

	fs := uploadCmd.Flags()
	fs.String("order-id", "", "Group the uploads under this order id")
	fs.Bool("new-order", false, "Group the uploads under a freshly generated order id")
	fs.String("enhance-type", "", "Enhancement style, e.g. property, warm, neutral, modern")
	fs.Bool("wait", false, "Wait until every image is processed")
	fs.Int("parallel", 1, "Number of uploads to run at once")
	addOptionFlags(fs, true)

	uploadCmd.MarkFlagsMutuallyExclusive("order-id", "new-order")
	return uploadCmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return err
	}

	orderID, _ := cmd.Flags().GetString("order-id")
	if newOrder, _ := cmd.Flags().GetBool("new-order"); newOrder {
		orderID = autoenhance.NewOrderID()
	}
	enhanceType, _ := cmd.Flags().GetString("enhance-type")
	wait, _ := cmd.Flags().GetBool("wait")
	parallel, _ := cmd.Flags().GetInt("parallel")
	if parallel < 1 {
		return fmt.Errorf("--parallel must be at least 1, got %d", parallel)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	reader := source.NewReader(&http.Client{Timeout: sourceTimeout}, s.logger)
	outputs := make([]uploadOutput, len(args))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parallel)
	for i, src := range args {
		g.Go(func() error {
			data, err := reader.Read(ctx, src)
			if err != nil {
				return err
			}

			name := source.NameFor(src)
			result, err := s.client.UploadImage(ctx, autoenhance.UploadRequest{
				Name:        name,
				Image:       data,
				OrderID:     orderID,
				EnhanceType: autoenhance.EnhanceType(enhanceType),
				Options:     &opts,
			})
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", src, err)
			}
			if !result.OK() {
				return fmt.Errorf("upload of %s failed with status %d: %s", src, result.StatusCode, string(result.Message))
			}

			out := uploadOutput{
				Source:    src,
				ImageName: name,
				ImageID:   result.ImageID,
				OrderID:   result.OrderID,
				Status:    result.StatusCode,
			}
			if wait {
				record, err := s.client.WaitForImage(ctx, result.ImageID)
				if err != nil {
					return fmt.Errorf("image %s from %s: %w", result.ImageID, src, err)
				}
				out.Image = record
			}

			s.logger.Info("uploaded", zap.String("source", src), zap.String("image_id", result.ImageID))
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), outputs)
}
