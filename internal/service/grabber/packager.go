package grabber

//go:generate $MOCKGEN -source=packager.go -destination=mocks/packager_mock.go

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/tube-grabber/internal/client/ffmpeg"
	"github.com/oshokin/tube-grabber/internal/constants"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
)

// Packager turns a raw download into the bytes returned to the client.
type Packager interface {
	// Package transcodes or remuxes the raw file when needed and reads the result.
	Package(ctx context.Context, req *PackageRequest) (*Package, error)
}

// PackageRequest describes one finished raw download.
type PackageRequest struct {
	// Session owns the scratch files; new files are registered on it.
	Session *Session
	// RawPath is the file produced by the extractor or the library.
	RawPath string
	// Target is the requested output format.
	Target media.OutputFormat
	// Info names the file and fills the tags.
	Info media.AssetInfo
}

// Package is the finished response payload.
type Package struct {
	// Data is the whole file.
	Data []byte
	// ContentType matches the actual container of Data.
	ContentType string
	// Filename is the sanitized name including the true extension.
	Filename string
	// Transcoded reports whether the transcoder produced Data.
	Transcoded bool
	// Warnings are user-facing notes gathered while downloading.
	Warnings []string
}

// PackagerImpl implements Packager with the transcoder and tagger.
type PackagerImpl struct {
	// transcoder converts containers.
	transcoder ffmpeg.Client
	// tagger writes mp3 tags; nil disables tagging.
	tagger Tagger
	// filenames renders the response filename.
	filenames *FilenameBuilder
	// metrics records transcoder runs.
	metrics *Metrics
}

// NewPackager creates a new Packager.
func NewPackager(transcoder ffmpeg.Client, tagger Tagger, filenames *FilenameBuilder, metrics *Metrics) Packager {
	return &PackagerImpl{
		transcoder: transcoder,
		tagger:     tagger,
		filenames:  filenames,
		metrics:    metrics,
	}
}

// Package converts the raw file into the target container.
// A failed transcode returns the raw bytes with the raw container's content type.
func (p *PackagerImpl) Package(ctx context.Context, req *PackageRequest) (*Package, error) {
	var (
		finalPath  = req.RawPath
		transcoded bool
	)

	if !strings.EqualFold(filepath.Ext(req.RawPath), req.Target.Extension()) {
		output, err := p.convert(ctx, req)
		if err != nil {
			logger.Warnf(ctx, "Returning untranscoded %s output: %v", filepath.Ext(req.RawPath), err)
		} else {
			finalPath, transcoded = output, true
		}
	}

	extension := strings.ToLower(filepath.Ext(finalPath))

	if extension == constants.ExtensionMP3 && p.tagger != nil {
		if err := p.tagger.Tag(ctx, finalPath, req.Info); err != nil {
			logger.Warnf(ctx, "Failed to write tags: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Clean(finalPath))
	if err != nil {
		return nil, newError(KindToolFailure, "failed to read the downloaded file", err)
	}

	return &Package{
		Data:        data,
		ContentType: constants.ContentTypeForExtension(extension, req.Target.IsAudio()),
		Filename:    p.filenames.Build(ctx, req.Info, extension),
		Transcoded:  transcoded,
	}, nil
}

func (p *PackagerImpl) convert(ctx context.Context, req *PackageRequest) (string, error) {
	if _, err := p.transcoder.Location(); err != nil {
		p.metrics.ObserveTranscode(string(req.Target), err)

		return "", err
	}

	output := req.Session.NewPath("out"+req.Target.Extension(), PurposeTranscoded)

	var err error

	switch req.Target {
	case media.OutputMP3:
		err = p.transcoder.ToMP3(ctx, req.RawPath, output)
	case media.OutputMP4:
		err = p.transcoder.Remux(ctx, req.RawPath, output)
	default:
		err = fmt.Errorf("%w: %q", media.ErrUnknownOutputFormat, req.Target)
	}

	p.metrics.ObserveTranscode(string(req.Target), err)

	if err != nil {
		return "", newError(KindTranscodeFailure, "transcode failed", err)
	}

	return output, nil
}
