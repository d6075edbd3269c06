package ytdlp

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
var resolutionPattern = regexp.MustCompile(`^(?P<width>\d+)x(?P<height>\d+)$`)

// ListFormats runs the human-readable listing mode and parses its table.
func (c *ClientImpl) ListFormats(ctx context.Context, req *ListingRequest) ([]ListingRow, error) {
	var (
		mu   sync.Mutex
		rows []ListingRow
	)

	// stdout and stderr are scanned concurrently.
	_, err := run(ctx, invocation{
		path:    req.ToolPath,
		args:    listingArgs(req),
		timeout: c.metadataTimeout,
		onLine: func(line string) {
			parsed := ParseListingLine(line)
			if len(parsed) == 0 {
				return
			}

			mu.Lock()
			rows = append(rows, parsed...)
			mu.Unlock()
		},
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ParseListing parses a complete listing output.
func ParseListing(output string) []ListingRow {
	var rows []ListingRow

	for _, line := range strings.Split(output, "\n") {
		rows = append(rows, ParseListingLine(line)...)
	}

	return rows
}

// ParseListingLine parses one line of the listing table.
// Header, separator and log lines yield no rows.
func ParseListingLine(line string) []ListingRow {
	fields := strings.Fields(line)

	//nolint:mnd // id, ext and resolution columns.
	if len(fields) < 3 || strings.HasPrefix(fields[0], "[") || fields[0] == "ID" || strings.HasPrefix(fields[0], "-") {
		return nil
	}

	// Storyboards are image sprites, not streams.
	if fields[1] == "mhtml" {
		return nil
	}

	row := ListingRow{FormatID: fields[0], Container: fields[1]}

	switch {
	case fields[2] == "audio" && len(fields) > 3 && fields[3] == "only":
		row.AudioOnly = true
	case resolutionPattern.MatchString(fields[2]):
		height, err := strconv.Atoi(resolutionPattern.FindStringSubmatch(fields[2])[2])
		if err != nil {
			return nil
		}

		row.Height = height
	default:
		return nil
	}

	return []ListingRow{row}
}

// MaxListedHeight returns the tallest height in rows.
func MaxListedHeight(rows []ListingRow) int {
	maxHeight := 0

	for _, row := range rows {
		maxHeight = max(maxHeight, row.Height)
	}

	return maxHeight
}
