package grabber

//go:generate $MOCKGEN -source=tagger.go -destination=mocks/tagger_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
)

// Tagger writes metadata tags to finished audio files.
type Tagger interface {
	// Tag writes title, artist and cover tags into an mp3 file.
	Tag(ctx context.Context, filePath string, info media.AssetInfo) error
}

// maxCoverBytes caps the thumbnail download.
const maxCoverBytes = 10 << 20

// Static error definitions for better error handling.
var (
	// ErrEmptyFilePath indicates that no file was given to tag.
	ErrEmptyFilePath = errors.New("file path cannot be empty")
	// ErrCoverStatus indicates a thumbnail request that did not return 200.
	ErrCoverStatus = errors.New("unexpected thumbnail response status")
)

// TaggerImpl writes ID3v2 tags and fetches the thumbnail as front cover.
type TaggerImpl struct {
	// httpClient fetches thumbnails.
	httpClient *http.Client
}

// NewTagger creates a new Tagger.
func NewTagger(httpClient *http.Client) Tagger {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &TaggerImpl{httpClient: httpClient}
}

// Tag writes title, artist and cover tags. A missing cover is logged, not returned.
func (t *TaggerImpl) Tag(ctx context.Context, filePath string, info media.AssetInfo) error {
	if filePath == "" {
		return ErrEmptyFilePath
	}

	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: false})
	if err != nil {
		return fmt.Errorf("failed to open tags: %w", err)
	}

	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if info.Title != "" {
		tag.SetTitle(info.Title)
	}

	if info.Author != "" {
		tag.SetArtist(info.Author)
	}

	if info.ID != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    id3v2.EnglishISO6392Code,
			Description: "source",
			Text:        info.ID,
		})
	}

	if info.ThumbnailURL != "" {
		cover, mimeType, coverErr := t.fetchCover(ctx, info.ThumbnailURL)
		if coverErr != nil {
			logger.Warnf(ctx, "Failed to fetch cover for %s: %v", info.ID, coverErr)
		} else {
			//nolint:exhaustruct // Description field intentionally empty for cover images.
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    mimeType,
				PictureType: id3v2.PTFrontCover,
				Picture:     cover,
			})
		}
	}

	if err = tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}

	return nil
}

func (t *TaggerImpl) fetchCover(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %d", ErrCoverStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, "", err
	}

	mimeType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = mime.TypeByExtension(path.Ext(req.URL.Path))
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return data, mimeType, nil
}
