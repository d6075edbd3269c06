package grabber

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
	"github.com/oshokin/tube-grabber/internal/utils"
)

// FilenameBuilder renders download filenames from the configured template.
type FilenameBuilder struct {
	// tmpl renders the stem from title, author and id.
	tmpl *template.Template
	// fallback renders the stem when tmpl fails.
	fallback *template.Template
	// maxLength is the rune limit of the stem.
	maxLength int
}

// NewFilenameBuilder parses the template; an empty template uses the default one.
func NewFilenameBuilder(text string, maxLength int) (*FilenameBuilder, error) {
	if text == "" {
		text = config.DefaultFilenameTemplate
	}

	tmpl, err := template.New("filename").Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filename template: %w", err)
	}

	return &FilenameBuilder{
		tmpl:      tmpl,
		fallback:  template.Must(template.New("default").Parse(config.DefaultFilenameTemplate)),
		maxLength: maxLength,
	}, nil
}

// Build returns the sanitized stem with extension appended.
func (b *FilenameBuilder) Build(ctx context.Context, info media.AssetInfo, extension string) string {
	data := map[string]string{
		"title":  info.Title,
		"author": info.Author,
		"id":     info.ID,
	}

	var buffer bytes.Buffer

	if err := b.tmpl.Execute(&buffer, data); err != nil {
		logger.Warnf(ctx, "Failed to render filename template: %v", err)

		buffer.Reset()
		_ = b.fallback.Execute(&buffer, data) //nolint:errcheck // Default template is always valid.
	}

	fallback := info.ID
	if fallback == "" {
		fallback = config.DefaultFilenameFallback
	}

	// Titles such as "remix.mp3" already carry the extension and keep a single copy.
	return utils.SetFileExtension(utils.SanitizeTitle(buffer.String(), b.maxLength, fallback), extension, false)
}

// ContentDisposition renders an attachment header carrying both filename forms:
// an ASCII-transliterated filename and an RFC 5987 UTF-8 filename*.
func ContentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		utils.TransliterateASCII(filename),
		utils.EncodeRFC5987(filename))
}
