package grabber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/tube-grabber/internal/constants"
	"github.com/oshokin/tube-grabber/internal/logger"
)

// ArtifactPurpose tells why a scratch file exists.
type ArtifactPurpose string

const (
	// PurposeRaw is the file produced by the extractor or the library.
	PurposeRaw ArtifactPurpose = "raw"
	// PurposeTranscoded is the output of the transcoder.
	PurposeTranscoded ArtifactPurpose = "transcoded"
	// PurposeStream is one half of a split library download.
	PurposeStream ArtifactPurpose = "stream"
)

// TempArtifact is one registered scratch file.
type TempArtifact struct {
	// Path is the absolute file path.
	Path string
	// Purpose tells why the file exists.
	Purpose ArtifactPurpose
}

// ErrNoOutput indicates that a finished download left no output file.
var ErrNoOutput = errors.New("no output file found")

//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
var (
	tokenFilePattern    = regexp.MustCompile(`^\d{13}-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	intermediatePattern = regexp.MustCompile(`\.f\d+[a-z0-9-]*\.[a-z0-9]+$`)
)

// Scratch owns the shared scratch directory.
type Scratch struct {
	// dir is the absolute scratch directory.
	dir string
	// now is the clock, replaced in tests.
	now func() time.Time
}

// NewScratch creates the scratch directory if needed.
func NewScratch(dir string) (*Scratch, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scratch dir: %w", err)
	}

	if err = os.MkdirAll(absDir, constants.DefaultFolderPermissions); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}

	return &Scratch{dir: absDir, now: time.Now}, nil
}

// Dir returns the scratch directory.
func (s *Scratch) Dir() string {
	return s.dir
}

// NewSession issues a collision-free token for one request.
func (s *Scratch) NewSession() *Session {
	return &Session{
		dir:   s.dir,
		token: strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + uuid.NewString(),
	}
}

// Sweep deletes token files older than maxAge, left behind by crashed processes.
func (s *Scratch) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read scratch dir: %w", err)
	}

	var (
		cutoff  = s.now().Add(-maxAge)
		removed int
	)

	for _, entry := range entries {
		if entry.IsDir() || !tokenFilePattern.MatchString(entry.Name()) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to remove stale scratch file %s: %v", path, removeErr)

			continue
		}

		removed++
	}

	if removed > 0 {
		logger.Infof(ctx, "Removed %d stale scratch files", removed)
	}

	return removed, nil
}

// Session is the scratch scope of one request.
type Session struct {
	// dir is the scratch directory.
	dir string
	// token prefixes every file of the session.
	token string
	// mu guards artifacts.
	mu sync.Mutex
	// artifacts are the registered files.
	artifacts []TempArtifact
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

// OutputTemplate returns the extractor output template; the extractor picks the extension.
func (s *Session) OutputTemplate() string {
	return filepath.Join(s.dir, s.token+".%(ext)s")
}

// NewPath returns and registers a session file path such as "<token>-video.mp4".
func (s *Session) NewPath(suffix string, purpose ArtifactPurpose) string {
	path := filepath.Join(s.dir, s.token+"-"+suffix)
	s.Register(path, purpose)

	return path
}

// Register adds a file to the cleanup ledger.
func (s *Session) Register(path string, purpose ArtifactPurpose) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.artifacts, func(a TempArtifact) bool { return a.Path == path }) {
		return
	}

	s.artifacts = append(s.artifacts, TempArtifact{Path: path, Purpose: purpose})
}

// Artifacts returns a copy of the ledger.
func (s *Session) Artifacts() []TempArtifact {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.artifacts)
}

// FindOutput locates the file the extractor produced.
// Partial downloads and per-format intermediates are ignored; among the rest
// the most recently modified file wins.
func (s *Session) FindOutput() (string, error) {
	files, err := s.files()
	if err != nil {
		return "", err
	}

	var (
		best     string
		bestTime time.Time
	)

	for _, path := range files {
		name := filepath.Base(path)
		if isPartialName(name) || intermediatePattern.MatchString(name) {
			continue
		}

		info, statErr := os.Stat(path)
		if statErr != nil || info.IsDir() || info.Size() == 0 {
			continue
		}

		if best == "" || info.ModTime().After(bestTime) {
			best, bestTime = path, info.ModTime()
		}
	}

	if best == "" {
		return "", ErrNoOutput
	}

	s.Register(best, PurposeRaw)

	return best, nil
}

// Cleanup removes every registered artifact and every file carrying the session token.
// Failures are logged and never returned.
func (s *Session) Cleanup(ctx context.Context) {
	paths := make(map[string]struct{})

	for _, artifact := range s.Artifacts() {
		paths[artifact.Path] = struct{}{}
	}

	files, err := s.files()
	if err != nil {
		logger.Warnf(ctx, "Failed to list scratch files of %s: %v", s.token, err)
	}

	for _, path := range files {
		paths[path] = struct{}{}
	}

	for path := range paths {
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to remove scratch file %s: %v", path, removeErr)
		}
	}

	logger.DebugKV(ctx, "Scratch session cleaned", "token", s.token, "files", len(paths))
}

func (s *Session) files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch dir: %w", err)
	}

	var files []string

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), s.token) {
			files = append(files, filepath.Join(s.dir, entry.Name()))
		}
	}

	return files, nil
}

func isPartialName(name string) bool {
	if strings.HasSuffix(name, constants.SuffixPartial) || strings.HasSuffix(name, constants.SuffixYTDL) {
		return true
	}

	return strings.Contains(name, constants.SuffixFragment) || strings.Contains(name, constants.SuffixTemp+".")
}
