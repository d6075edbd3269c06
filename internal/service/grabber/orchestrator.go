package grabber

//go:generate $MOCKGEN -source=orchestrator.go -destination=mocks/orchestrator_mock.go

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/tube-grabber/internal/client/ffmpeg"
	"github.com/oshokin/tube-grabber/internal/client/potoken"
	"github.com/oshokin/tube-grabber/internal/client/youtube"
	"github.com/oshokin/tube-grabber/internal/client/ytdlp"
	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/media"
)

// Service resolves URLs into finished files and asset details.
type Service interface {
	// Download runs the cascade, the library fallback if needed, and packaging.
	Download(ctx context.Context, req *DownloadRequest) (*Package, error)
	// Info returns the asset details and its stream catalog.
	Info(ctx context.Context, rawURL string) (*InfoResult, error)
	// Status reports external tool availability.
	Status(ctx context.Context) *ToolStatus
	// Sweep removes stale scratch files left by earlier processes.
	Sweep(ctx context.Context) (int, error)
}

// DownloadRequest is one client download request.
type DownloadRequest struct {
	// URL is the raw user-supplied URL.
	URL string
	// Format is "mp3" or "mp4".
	Format string
	// Quality is an optional catalog format id or a height such as "720p".
	Quality string
}

// InfoResult describes an asset for clients.
type InfoResult struct {
	// Info holds the asset details.
	Info media.AssetInfo
	// AudioFormats are audio-only streams, best bitrate first.
	AudioFormats []media.StreamDescriptor
	// VideoFormats are video-bearing streams, tallest first.
	VideoFormats []media.StreamDescriptor
	// Warnings are user-facing notes, e.g. about hidden higher qualities.
	Warnings []string
	// Source is "extractor" or "library".
	Source string
}

// Info sources.
const (
	SourceExtractor = "extractor"
	SourceLibrary   = "library"
)

// ToolStatus reports external tool availability.
type ToolStatus struct {
	// ExtractorAvailable is true when a working extractor was located.
	ExtractorAvailable bool
	// ExtractorPath is the located binary.
	ExtractorPath string
	// ExtractorVersion is its reported version.
	ExtractorVersion string
	// TranscoderAvailable is true when the transcoder binary was found.
	TranscoderAvailable bool
	// TranscoderPath is the resolved transcoder binary.
	TranscoderPath string
}

// Dependencies wires ServiceImpl.
type Dependencies struct {
	// Config holds validated settings.
	Config *config.Config
	// Locator finds the extractor.
	Locator ytdlp.Locator
	// Extractor runs the extractor.
	Extractor ytdlp.Client
	// Library is the fallback path.
	Library youtube.Client
	// Transcoder converts and muxes files.
	Transcoder ffmpeg.Client
	// Tokens supplies proof-of-origin tokens; may be nil.
	Tokens potoken.Provider
	// Scratch owns the scratch directory.
	Scratch *Scratch
	// Packager builds the response payload.
	Packager Packager
	// Metrics records telemetry; may be nil.
	Metrics *Metrics
	// Progress creates per-step reporters; may be nil.
	Progress ProgressFactory
}

// ServiceImpl implements Service.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// locator finds the extractor.
	locator ytdlp.Locator
	// extractor runs the extractor.
	extractor ytdlp.Client
	// library is the fallback path.
	library youtube.Client
	// transcoder converts and muxes files.
	transcoder ffmpeg.Client
	// tokens supplies proof-of-origin tokens.
	tokens potoken.Provider
	// scratch owns the scratch directory.
	scratch *Scratch
	// packager builds the response payload.
	packager Packager
	// metrics records telemetry.
	metrics *Metrics
	// progress creates per-step reporters.
	progress ProgressFactory
}

// NewService creates a new Service.
func NewService(deps Dependencies) Service {
	progress := deps.Progress
	if progress == nil {
		progress = func(context.Context, string) ProgressReporter { return nopReporter{} }
	}

	return &ServiceImpl{
		cfg:        deps.Config,
		locator:    deps.Locator,
		extractor:  deps.Extractor,
		library:    deps.Library,
		transcoder: deps.Transcoder,
		tokens:     deps.Tokens,
		scratch:    deps.Scratch,
		packager:   deps.Packager,
		metrics:    deps.Metrics,
		progress:   progress,
	}
}

// downloadInput is a validated DownloadRequest.
type downloadInput struct {
	url     string
	videoID string
	format  media.OutputFormat
	policy  media.QualityPolicy
}

// rawOutput is a finished raw download.
type rawOutput struct {
	path     string
	info     media.AssetInfo
	warnings []string
}

// requestRun carries the state of one download through the cascade.
type requestRun struct {
	ctx            context.Context //nolint:containedctx // Request-scoped, never stored beyond the request.
	state          State
	input          *downloadInput
	session        *Session
	tool           *ytdlp.Tool
	poToken        string
	info           media.AssetInfo
	listingChecked bool
	warnings       []string
	summary        failureSummary
}

func (r *requestRun) enter(to State) {
	r.state = transition(r.ctx, r.state, to)
}

// Download runs the cascade, the library fallback if needed, and packaging.
// Every scratch file of the request is removed before it returns.
func (s *ServiceImpl) Download(ctx context.Context, req *DownloadRequest) (pkg *Package, err error) {
	startedAt := time.Now()

	defer func() {
		s.metrics.ObserveRequest("download", time.Since(startedAt), err)
	}()

	input, err := s.parseDownloadRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ParsedRequestTimeout)
	defer cancel()

	session := s.scratch.NewSession()
	ctx = logger.WithKV(ctx, "token", session.Token())

	defer session.Cleanup(context.WithoutCancel(ctx))

	logger.InfoKV(ctx, "Download requested", "url", input.url, "format", input.format, "quality", req.Quality)

	raw, err := s.obtainRaw(ctx, input, session)
	if err != nil {
		logger.WarnKV(ctx, "Download failed", "kind", KindOf(err), "error", err)

		return nil, err
	}

	pkg, err = s.packager.Package(ctx, &PackageRequest{
		Session: session,
		RawPath: raw.path,
		Target:  input.format,
		Info:    raw.info,
	})
	if err != nil {
		return nil, err
	}

	pkg.Warnings = raw.warnings

	logger.InfoKV(ctx, "Download finished",
		"filename", pkg.Filename,
		"bytes", len(pkg.Data),
		"transcoded", pkg.Transcoded,
		"duration", time.Since(startedAt).Round(time.Millisecond))

	return pkg, nil
}

func (s *ServiceImpl) parseDownloadRequest(req *DownloadRequest) (*downloadInput, error) {
	url, err := media.NormalizeURL(req.URL)
	if err != nil {
		return nil, newError(KindInvalidInput, err.Error(), err)
	}

	format, err := media.ParseOutputFormat(req.Format)
	if err != nil {
		return nil, newError(KindInvalidInput, "invalid format", err)
	}

	policy, err := media.PolicyFromRequest(format, req.Quality, s.cfg.PreferredHeight, s.cfg.MinHeight)
	if err != nil {
		return nil, newError(KindInvalidInput, "invalid quality", err)
	}

	return &downloadInput{
		url:     url,
		videoID: media.VideoID(url),
		format:  format,
		policy:  policy,
	}, nil
}

func (s *ServiceImpl) obtainRaw(ctx context.Context, input *downloadInput, session *Session) (*rawOutput, error) {
	run := &requestRun{
		ctx:     ctx,
		state:   StateIdle,
		input:   input,
		session: session,
		info:    media.AssetInfo{ID: input.videoID},
	}

	run.enter(StateProbingTool)

	tool, err := s.locator.Locate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newError(KindProcessTimeout, "request timed out", ctx.Err())
		}

		logger.Infof(ctx, "Extractor is unavailable, using the library path: %v", err)
		run.enter(StateLibraryFallback)

		raw, libErr := s.runLibrary(ctx, input, session)

		return s.finish(run, raw, libErr)
	}

	run.tool = tool
	run.poToken = s.token(ctx, input.videoID)

	raw, cascadeErr := s.runCascade(run)
	if cascadeErr == nil {
		run.enter(StateCompleted)

		return raw, nil
	}

	if ctx.Err() != nil {
		run.enter(StateFailed)

		return nil, cascadeErr
	}

	logger.Infof(ctx, "Cascade exhausted (%v), trying the library path", cascadeErr)
	run.enter(StateLibraryFallback)

	raw, libErr := s.runLibrary(ctx, input, session)
	if libErr != nil {
		run.enter(StateFailed)

		return nil, mostActionable(cascadeErr, libErr)
	}

	if raw.info.Title == "" {
		raw.info = run.info
	}

	raw.warnings = run.warnings

	run.enter(StateCompleted)

	return raw, nil
}

func (s *ServiceImpl) finish(run *requestRun, raw *rawOutput, err error) (*rawOutput, error) {
	if err != nil {
		run.enter(StateFailed)

		return nil, err
	}

	run.enter(StateCompleted)

	return raw, nil
}

// runCascade walks the cascade table until one step produces a file.
func (s *ServiceImpl) runCascade(run *requestRun) (*rawOutput, error) {
	var (
		ctx     = run.ctx
		table   = BuildCascade(s.identities(run.input.format), s.cfg.ParsedRelaxations, run.input.policy.RequestedFormatID != "")
		skipped = make(map[media.ClientIdentity]bool)
	)

	if len(table) == 0 {
		return nil, newError(KindFormatUnavailable, "no download strategies configured", nil)
	}

	for _, step := range table {
		if err := ctx.Err(); err != nil {
			return nil, newError(KindProcessTimeout, "request timed out", err)
		}

		if skipped[step.Identity] {
			continue
		}

		attempt := newAttempt(step, run.input.policy.Apply(step.Relaxation))

		path, failure := s.runStep(run, attempt)
		if failure == nil {
			attempt.resolve(ctx, OutcomeSucceeded, nil)
			s.metrics.ObserveAttempt(attempt)

			return &rawOutput{path: path, info: run.info, warnings: run.warnings}, nil
		}

		attempt.resolve(ctx, failure.outcome, failure.err)
		s.metrics.ObserveAttempt(attempt)
		run.summary.record(failure)
		run.enter(StateFailed)

		if failure.skipIdentity {
			skipped[step.Identity] = true
		}

		// Partial files of the failed step must not be mistaken for the next step's output.
		run.session.Cleanup(ctx)
	}

	if err := ctx.Err(); err != nil {
		return nil, newError(KindProcessTimeout, "request timed out", err)
	}

	return nil, run.summary.err()
}

// runStep fetches, selects and downloads with one identity and relaxation.
func (s *ServiceImpl) runStep(run *requestRun, attempt *DownloadAttempt) (string, *stepFailure) {
	var (
		ctx        = run.ctx
		input      = run.input
		expression = genericSelector(input.format)
		merge      = !input.format.IsAudio()
	)

	if attempt.Relaxation != media.RelaxUnrestricted {
		run.enter(StateFetchingCatalog)

		catalog, err := s.extractor.FetchCatalog(ctx, &ytdlp.CatalogRequest{
			ToolPath: run.tool.Path,
			URL:      input.url,
			Identity: attempt.Identity,
			POToken:  run.poToken,
		})
		if err != nil {
			return "", classifyStep(StateFetchingCatalog, err)
		}

		run.summary.catalogFetched = true
		run.info = mergeInfo(run.info, catalog.Info)

		if !run.listingChecked && attempt.Policy.Kind == media.PolicyVideo {
			run.listingChecked = true
			warnings := s.listingWarnings(ctx, run.tool, input.url, attempt.Identity, run.poToken,
				catalog, attempt.Policy.PreferredHeight)
			run.warnings = append(run.warnings, warnings...)
		}

		run.enter(StateSelecting)

		selection, ok := Select(catalog, attempt.Policy)
		if !ok {
			return "", classifyStep(StateSelecting, errNoSelection)
		}

		if selection.BelowFloor {
			logger.Warnf(ctx, "Best %s stream is %dp, below the %dp floor",
				attempt.Identity, selection.Height, attempt.Policy.MinHeight)
		}

		expression = selection.FormatExpression()
		merge = selection.NeedsMerge()
	}

	attempt.ResolvedFormatID = expression

	run.enter(StateSpawning)

	reporter := s.progress(ctx, fmt.Sprintf("%s/%s", attempt.Identity, attempt.Relaxation))
	defer reporter.Finish()

	req := &ytdlp.DownloadRequest{
		ToolPath:         run.tool.Path,
		URL:              input.url,
		Identity:         attempt.Identity,
		POToken:          run.poToken,
		FormatExpression: expression,
		OutputTemplate:   run.session.OutputTemplate(),
		OnProgress: func(p ytdlp.Progress) {
			reporter.Update(p.Percent)
		},
	}

	if merge && !input.format.IsAudio() {
		req.MergeOutputFormat = string(media.OutputMP4)
	}

	if location, err := s.transcoder.Location(); err == nil {
		req.TranscoderLocation = location
	}

	run.enter(StateRunning)

	if _, err := s.extractor.Download(ctx, req); err != nil {
		return "", classifyStep(StateRunning, err)
	}

	path, err := run.session.FindOutput()
	if err != nil {
		return "", classifyStep(StateRunning, err)
	}

	return path, nil
}

// listingWarnings logs and returns a warning when the listing mode shows a taller
// stream than the catalog. It never fails.
func (s *ServiceImpl) listingWarnings(
	ctx context.Context,
	tool *ytdlp.Tool,
	url string,
	identity media.ClientIdentity,
	poToken string,
	catalog *media.Catalog,
	preferredHeight int,
) []string {
	catalogHeight := catalog.MaxHeight()
	if catalogHeight >= preferredHeight {
		return nil
	}

	rows, err := s.extractor.ListFormats(ctx, &ytdlp.ListingRequest{
		ToolPath: tool.Path,
		URL:      url,
		Identity: identity,
		POToken:  poToken,
	})
	if err != nil {
		logger.Debugf(ctx, "Format listing failed: %v", err)

		return nil
	}

	listedHeight := ytdlp.MaxListedHeight(rows)
	if listedHeight <= catalogHeight {
		return nil
	}

	warning := fmt.Sprintf(
		"a %dp stream exists but is not downloadable with the %s client; the best available is %dp",
		listedHeight, identity, catalogHeight)

	logger.Warn(ctx, warning)

	return []string{warning}
}

// Info returns the asset details and its stream catalog.
// The extractor is tried with every video identity, then the library.
func (s *ServiceImpl) Info(ctx context.Context, rawURL string) (result *InfoResult, err error) {
	startedAt := time.Now()

	defer func() {
		s.metrics.ObserveRequest("info", time.Since(startedAt), err)
	}()

	url, err := media.NormalizeURL(rawURL)
	if err != nil {
		return nil, newError(KindInvalidInput, err.Error(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ParsedRequestTimeout)
	defer cancel()

	var cascadeErr error

	tool, locateErr := s.locator.Locate(ctx)
	if locateErr == nil {
		result, cascadeErr = s.infoFromExtractor(ctx, tool, url)
		if cascadeErr == nil {
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, cascadeErr
		}
	} else {
		logger.Infof(ctx, "Extractor is unavailable, using the library path: %v", locateErr)
	}

	libCtx, libCancel := context.WithTimeout(ctx, s.cfg.ParsedLibraryTimeout)
	defer libCancel()

	asset, libErr := s.library.GetAsset(libCtx, url)
	if libErr != nil {
		return nil, mostActionable(cascadeErr, libraryError(libErr))
	}

	return newInfoResult(&asset.Catalog, SourceLibrary), nil
}

func (s *ServiceImpl) infoFromExtractor(ctx context.Context, tool *ytdlp.Tool, url string) (*InfoResult, error) {
	var (
		summary failureSummary
		poToken = s.token(ctx, media.VideoID(url))
	)

	for _, identity := range s.cfg.ParsedVideoIdentities {
		catalog, err := s.extractor.FetchCatalog(ctx, &ytdlp.CatalogRequest{
			ToolPath: tool.Path,
			URL:      url,
			Identity: identity,
			POToken:  poToken,
		})
		if err != nil {
			failure := classifyStep(StateFetchingCatalog, err)
			summary.record(failure)

			logger.WarnKV(ctx, "Catalog fetch failed", "identity", identity, "outcome", failure.outcome, "error", err)

			if ctx.Err() != nil {
				return nil, newError(KindProcessTimeout, "request timed out", ctx.Err())
			}

			continue
		}

		result := newInfoResult(catalog, SourceExtractor)
		result.Warnings = s.listingWarnings(ctx, tool, url, identity, poToken, catalog, s.cfg.PreferredHeight)

		return result, nil
	}

	if err := summary.err(); err != nil {
		return nil, err
	}

	return nil, newError(KindCatalogUnavailable, "no client identities configured", nil)
}

// Status reports external tool availability.
func (s *ServiceImpl) Status(ctx context.Context) *ToolStatus {
	status := new(ToolStatus)

	if tool, err := s.locator.Locate(ctx); err == nil {
		status.ExtractorAvailable = true
		status.ExtractorPath = tool.Path
		status.ExtractorVersion = tool.Version
	}

	if location, err := s.transcoder.Location(); err == nil {
		status.TranscoderAvailable = true
		status.TranscoderPath = location
	}

	return status
}

// Sweep removes scratch files older than the configured stale age.
func (s *ServiceImpl) Sweep(ctx context.Context) (int, error) {
	removed, err := s.scratch.Sweep(ctx, s.cfg.ParsedStaleArtifactAge)
	s.metrics.ObserveSweep(removed)

	return removed, err
}

func (s *ServiceImpl) identities(format media.OutputFormat) []media.ClientIdentity {
	if format.IsAudio() {
		return s.cfg.ParsedAudioIdentities
	}

	return s.cfg.ParsedVideoIdentities
}

// token fetches the proof-of-origin token once per request; failures only reduce capability.
func (s *ServiceImpl) token(ctx context.Context, videoID string) string {
	if s.tokens == nil {
		return ""
	}

	token, err := s.tokens.Token(ctx, videoID)
	if err != nil {
		logger.Warnf(ctx, "Proof-of-origin token is unavailable: %v", err)

		return ""
	}

	return token
}

func genericSelector(format media.OutputFormat) string {
	if format.IsAudio() {
		return ytdlp.GenericAudioSelector
	}

	return ytdlp.GenericVideoSelector
}

// mergeInfo fills empty fields of current from fetched.
func mergeInfo(current, fetched media.AssetInfo) media.AssetInfo {
	if fetched.ID == "" {
		fetched.ID = current.ID
	}

	if fetched.Title == "" {
		return current
	}

	return fetched
}

// mostActionable picks the error a user can act on best.
func mostActionable(errs ...error) error {
	var (
		best     error
		bestRank = -1
	)

	for _, err := range errs {
		if err == nil {
			continue
		}

		if rank := actionRank(err); rank > bestRank {
			best, bestRank = err, rank
		}
	}

	return best
}

func actionRank(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}

	switch e.Kind {
	case KindAccessBlocked:
		return 6 //nolint:mnd // Ranking.
	case KindInvalidInput:
		return 5 //nolint:mnd // Ranking.
	case KindCatalogUnavailable:
		if e.Reason != "" {
			return 5 //nolint:mnd // Ranking.
		}

		return 4 //nolint:mnd // Ranking.
	case KindFormatUnavailable:
		return 3 //nolint:mnd // Ranking.
	case KindProcessTimeout:
		return 2 //nolint:mnd // Ranking.
	default:
		return 1
	}
}
