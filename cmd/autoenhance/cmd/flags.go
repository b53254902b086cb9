package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
)

func addOptionFlags(fs *pflag.FlagSet, withHDR bool) {
	d := autoenhance.DefaultEnhancementOptions()

	fs.Bool("vertical-correction", d.VerticalCorrection, "Straighten vertical lines")
	fs.Bool("sky-replacement", d.SkyReplacement, "Replace the sky")
	fs.String("sky-type", string(d.SkyType), fmt.Sprintf("Replacement sky, one of %v", autoenhance.SkyTypes()))
	fs.String("cloud-type", string(d.CloudType), fmt.Sprintf("Cloud cover, one of %v", autoenhance.CloudTypes()))
	fs.String("contrast-boost", string(d.ContrastBoost), fmt.Sprintf("Contrast boost, one of %v", autoenhance.ContrastBoosts()))
	fs.Bool("threesixty", d.ThreeSixty, "Image is a 360 panorama")
	if withHDR {
		fs.Bool("hdr", d.HDR, "Merge bracketed exposures")
	}
}

func optionsFromFlags(cmd *cobra.Command) (autoenhance.EnhancementOptions, error) {
	fs := cmd.Flags()
	opts := autoenhance.DefaultEnhancementOptions()

	var err error
	if opts.VerticalCorrection, err = fs.GetBool("vertical-correction"); err != nil {
		return opts, err
	}
	if opts.SkyReplacement, err = fs.GetBool("sky-replacement"); err != nil {
		return opts, err
	}
	if opts.ThreeSixty, err = fs.GetBool("threesixty"); err != nil {
		return opts, err
	}
	if fs.Lookup("hdr") != nil {
		if opts.HDR, err = fs.GetBool("hdr"); err != nil {
			return opts, err
		}
	}

	raw, _ := fs.GetString("sky-type")
	if opts.SkyType, err = autoenhance.ParseSkyType(raw); err != nil {
		return opts, err
	}
	raw, _ = fs.GetString("cloud-type")
	if opts.CloudType, err = autoenhance.ParseCloudType(raw); err != nil {
		return opts, err
	}
	raw, _ = fs.GetString("contrast-boost")
	if opts.ContrastBoost, err = autoenhance.ParseContrastBoost(raw); err != nil {
		return opts, err
	}
	return opts, nil
}
