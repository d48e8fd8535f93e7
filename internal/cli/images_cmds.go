package cli

import (
	"os"

	"github.com/jrsteele09/academy-admin/images"
	"github.com/spf13/cobra"
)

type imageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
	Inline string `json:"inline,omitempty"`
}

func (a *App) imagesCmd() *cobra.Command {
	var opts images.CloudinaryOptions
	url := &cobra.Command{
		Use:   "url [public-id|cloudinary-url]",
		Short: "Build the delivery URL of an uploaded image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout(), a.output)
			id := ""
			if len(args) == 1 {
				id = args[0]
				if images.IsCloudinaryURL(id) {
					var ok bool
					if id, ok = images.ExtractPublicID(id); !ok {
						id = ""
					}
				}
			}
			if id == "" {
				p.Line("%s", images.PlaceholderURL())
				return nil
			}
			if opts.CloudName == "" {
				opts.CloudName = a.cfg.GetCloudinaryCloudName()
			}
			p.Line("%s", images.CloudinaryURL(id, opts))
			return nil
		},
	}
	url.Flags().StringVar(&opts.CloudName, "cloud", "", "Cloud name (default CLOUDINARY_CLOUD_NAME)")
	url.Flags().IntVar(&opts.Width, "width", 0, "Width transformation")
	url.Flags().IntVar(&opts.Height, "height", 0, "Height transformation")
	url.Flags().StringVar(&opts.Crop, "crop", "", "Crop mode, e.g. fill")
	url.Flags().StringVar(&opts.Quality, "quality", "", "Quality, e.g. auto")

	var (
		preset string
		inline bool
	)
	inspect := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show an image's size before and after the upload resize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bounds := a.cfg.GetCategoryImageBounds()
			if preset == "tournament" {
				bounds = a.cfg.GetTournamentImageBounds()
			}
			original, err := images.FileToDataURI(args[0])
			if err != nil {
				return err
			}
			resized, err := images.ResizeToBounds(original, bounds)
			if err != nil {
				return err
			}

			info := map[string]imageInfo{}
			for name, uri := range map[string]string{"original": original, "resized": resized} {
				w, h, err := images.Dimensions(uri)
				if err != nil {
					return err
				}
				ii := imageInfo{Width: w, Height: h, Bytes: len(uri)}
				if inline && name == "resized" {
					ii.Inline = uri
				}
				info[name] = ii
			}
			if st, err := os.Stat(args[0]); err == nil {
				orig := info["original"]
				orig.Bytes = int(st.Size())
				info["original"] = orig
			}
			return newPrinter(cmd.OutOrStdout(), a.output).Print(info)
		},
	}
	inspect.Flags().StringVar(&preset, "preset", "category", "Resize preset: category or tournament")
	inspect.Flags().BoolVar(&inline, "inline", false, "Include the resized data URI")

	return group("images", "Inline image helpers", url, inspect)
}
