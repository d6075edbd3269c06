package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/media"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
)

// ExecuteInfoCommand prints the asset details and its selectable formats to w.
func ExecuteInfoCommand(ctx context.Context, cfg *config.Config, rawURL string, w io.Writer) error {
	c, err := newComponents(cfg, nil)
	if err != nil {
		return err
	}

	result, err := c.service.Info(ctx, rawURL)
	if err != nil {
		return err
	}

	return printInfo(w, result)
}

func printInfo(w io.Writer, result *grabber.InfoResult) error {
	info := result.Info
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // Column padding.

	fmt.Fprintf(tw, "Title:\t%s\n", info.Title)
	fmt.Fprintf(tw, "Author:\t%s\n", info.Author)
	fmt.Fprintf(tw, "Length:\t%s\n", time.Duration(info.LengthSeconds)*time.Second)
	fmt.Fprintf(tw, "Views:\t%s\n", humanize.Comma(info.ViewCount))
	fmt.Fprintf(tw, "Source:\t%s\n", result.Source)

	printFormats(tw, "Audio formats", result.AudioFormats)
	printFormats(tw, "Video formats", result.VideoFormats)

	for _, warning := range result.Warnings {
		fmt.Fprintf(tw, "\nWarning: %s\n", warning)
	}

	return tw.Flush()
}

func printFormats(w io.Writer, title string, formats []media.StreamDescriptor) {
	if len(formats) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s:\n", title)
	fmt.Fprintln(w, "ID\tEXT\tQUALITY\tCODECS")

	for i := range formats {
		d := &formats[i]
		codecs := strings.Trim(d.VideoCodec+" "+d.AudioCodec, " ")

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.FormatID, d.Container, d.QualityLabel(), codecs)
	}
}
