package grabber

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/tube-grabber/internal/client/youtube"
	"github.com/oshokin/tube-grabber/internal/constants"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
)

// runLibrary downloads through the library, bounded by the library timeout.
func (s *ServiceImpl) runLibrary(ctx context.Context, input *downloadInput, session *Session) (raw *rawOutput, err error) {
	defer func() {
		s.metrics.ObserveFallback(err)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ParsedLibraryTimeout)
	defer cancel()

	asset, err := s.library.GetAsset(ctx, input.url)
	if err != nil {
		return nil, libraryError(err)
	}

	catalog := &asset.Catalog

	selection, err := s.planLibrary(catalog, input)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Library download started", "format", selection.FormatExpression())

	var path string

	if selection.NeedsMerge() {
		path, err = s.downloadSplit(ctx, asset, selection, session)
	} else {
		path, err = s.downloadSingle(ctx, asset, selection.FormatID, session)
	}

	if err != nil {
		return nil, err
	}

	return &rawOutput{path: path, info: catalog.Info}, nil
}

// planLibrary selects streams from the library catalog.
// Split video needs the transcoder; without it the best combined stream is used.
func (s *ServiceImpl) planLibrary(catalog *media.Catalog, input *downloadInput) (Selection, error) {
	selection, ok := Select(catalog, input.policy)

	if input.format.IsAudio() {
		if ok {
			return selection, nil
		}

		// No audio-only stream: extract the audio of a combined one.
		if combined, found := pickTier(catalog, true, 0); found {
			return Selection{FormatID: combined.FormatID, Combined: true}, nil
		}

		return Selection{}, newError(KindFormatUnavailable, "no audio stream found", errNoSelection)
	}

	if !ok {
		return Selection{}, newError(KindFormatUnavailable, "no video stream found", errNoSelection)
	}

	if !selection.NeedsMerge() {
		return selection, nil
	}

	if _, err := s.transcoder.Location(); err == nil {
		return selection, nil
	}

	if combined, found := pickTier(catalog, true, 0); found {
		return videoSelection(catalog, combined, input.policy), nil
	}

	return Selection{}, newError(KindFormatUnavailable,
		"video is only available as separate streams and the transcoder is missing", errNoSelection)
}

func (s *ServiceImpl) downloadSingle(
	ctx context.Context,
	asset *youtube.Asset,
	formatID string,
	session *Session,
) (string, error) {
	path := session.NewPath("library"+containerExtension(&asset.Catalog, formatID), PurposeRaw)

	if _, err := s.library.DownloadStream(ctx, asset, formatID, path); err != nil {
		return "", libraryError(err)
	}

	return path, nil
}

// downloadSplit fetches both halves in parallel; either failure cancels the other.
func (s *ServiceImpl) downloadSplit(
	ctx context.Context,
	asset *youtube.Asset,
	selection Selection,
	session *Session,
) (string, error) {
	var (
		catalog   = &asset.Catalog
		videoPath = session.NewPath("video"+containerExtension(catalog, selection.FormatID), PurposeStream)
		audioPath = session.NewPath("audio"+containerExtension(catalog, selection.AudioFormatID), PurposeStream)
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		_, err := s.library.DownloadStream(groupCtx, asset, selection.FormatID, videoPath)

		return err
	})

	group.Go(func() error {
		_, err := s.library.DownloadStream(groupCtx, asset, selection.AudioFormatID, audioPath)

		return err
	})

	if err := group.Wait(); err != nil {
		return "", libraryError(err)
	}

	output := session.NewPath("muxed"+constants.ExtensionMP4, PurposeRaw)

	muxErr := s.transcoder.Mux(ctx, videoPath, audioPath, output)
	s.metrics.ObserveTranscode("mux", muxErr)

	if muxErr == nil {
		return output, nil
	}

	combined, found := pickTier(catalog, true, 0)
	if !found {
		return "", newError(KindToolFailure, "failed to combine video and audio", muxErr)
	}

	logger.Warnf(ctx, "Failed to mux streams, using combined format %s: %v", combined.FormatID, muxErr)

	return s.downloadSingle(ctx, asset, combined.FormatID, session)
}

func containerExtension(catalog *media.Catalog, formatID string) string {
	if d, ok := catalog.Lookup(formatID); ok && d.Container != "" {
		return "." + d.Container
	}

	return constants.ExtensionBin
}

// libraryError classifies a library failure.
func libraryError(err error) error {
	var classified *Error

	switch {
	case errors.As(err, &classified):
		return classified
	case errors.Is(err, context.DeadlineExceeded):
		return newError(KindProcessTimeout, "library download timed out", err)
	case errors.Is(err, youtube.ErrAccessBlocked):
		return newError(KindAccessBlocked, "access blocked", err)
	case errors.Is(err, youtube.ErrAssetRejected):
		e := newError(KindCatalogUnavailable, "video is unavailable", err)
		e.Reason = youtube.Reason(err)

		return e
	case errors.Is(err, youtube.ErrInvalidID):
		return newError(KindInvalidInput, media.ErrInvalidURL.Error(), err)
	case errors.Is(err, youtube.ErrEmptyCatalog):
		return newError(KindCatalogUnavailable, "failed to fetch video information", err)
	default:
		return newError(KindToolFailure, "download failed", fmt.Errorf("library: %w", err))
	}
}
