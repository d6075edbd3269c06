package server

import (
	"github.com/oshokin/tube-grabber/internal/media"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
	"github.com/oshokin/tube-grabber/internal/utils"
	"github.com/oshokin/tube-grabber/internal/version"
)

type errorResponse struct {
	Error string `json:"error"`
}

type infoRequest struct {
	URL string `json:"url"`
}

type downloadRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

// formatResponse is one selectable stream; id is accepted back as the download quality.
type formatResponse struct {
	ID         string `json:"id"`
	Quality    string `json:"quality"`
	Ext        string `json:"ext"`
	HasAudio   bool   `json:"hasAudio"`
	HasVideo   bool   `json:"hasVideo"`
	VideoCodec string `json:"videoCodec,omitempty"`
	AudioCodec string `json:"audioCodec,omitempty"`
}

type infoResponse struct {
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Thumbnail     string           `json:"thumbnail"`
	LengthSeconds int64            `json:"lengthSeconds"`
	ViewCount     int64            `json:"viewCount"`
	AudioFormats  []formatResponse `json:"audioFormats"`
	VideoFormats  []formatResponse `json:"videoFormats"`
	Warnings      []string         `json:"warnings"`
	Source        string           `json:"source"`
}

type toolResponse struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
}

type healthResponse struct {
	Status     string       `json:"status"`
	Version    string       `json:"version"`
	Extractor  toolResponse `json:"extractor"`
	Transcoder toolResponse `json:"transcoder"`
}

func newInfoResponse(result *grabber.InfoResult) infoResponse {
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return infoResponse{
		Title:         result.Info.Title,
		Author:        result.Info.Author,
		Thumbnail:     result.Info.ThumbnailURL,
		LengthSeconds: result.Info.LengthSeconds,
		ViewCount:     result.Info.ViewCount,
		AudioFormats:  utils.Map(result.AudioFormats, newFormatResponse),
		VideoFormats:  utils.Map(result.VideoFormats, newFormatResponse),
		Warnings:      warnings,
		Source:        result.Source,
	}
}

func newFormatResponse(d media.StreamDescriptor) formatResponse {
	return formatResponse{
		ID:         d.FormatID,
		Quality:    d.QualityLabel(),
		Ext:        d.Container,
		HasAudio:   d.HasAudio,
		HasVideo:   d.HasVideo,
		VideoCodec: d.VideoCodec,
		AudioCodec: d.AudioCodec,
	}
}

func newHealthResponse(status *grabber.ToolStatus) healthResponse {
	result := healthResponse{
		Status:  "ok",
		Version: version.Short(),
		Extractor: toolResponse{
			Available: status.ExtractorAvailable,
			Path:      status.ExtractorPath,
			Version:   status.ExtractorVersion,
		},
		Transcoder: toolResponse{
			Available: status.TranscoderAvailable,
			Path:      status.TranscoderPath,
		},
	}

	// The library path still works without the extractor.
	if !status.ExtractorAvailable || !status.TranscoderAvailable {
		result.Status = "degraded"
	}

	return result
}
