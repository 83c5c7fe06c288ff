package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/onlytoseef/earnshadowhub/pkg/config"
)

var (
	ErrTooManyFiles    = errors.New("storage: too many evidence files")
	ErrUnsupportedType = errors.New("storage: unsupported file type")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// EvidenceStore saves submission screenshots to local disk and hands back the
// public relative paths stored on the submission record.
type EvidenceStore struct {
	dir        string
	publicPath string
	maxFiles   int
	logger     *zap.Logger
}

func NewEvidenceStore(cfg config.UploadsConfig, logger *zap.Logger) (*EvidenceStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.Dir, err)
	}
	maxFiles := cfg.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &EvidenceStore{
		dir:        cfg.Dir,
		publicPath: strings.TrimSuffix(cfg.PublicPath, "/"),
		maxFiles:   maxFiles,
		logger:     logger,
	}, nil
}

// MaxFiles returns the per-submission screenshot limit.
func (s *EvidenceStore) MaxFiles() int {
	return s.maxFiles
}

// SaveAll writes the uploaded screenshots to disk under random names and
// returns their public paths. On any failure the files already written for
// this call are removed so a submission never references half a batch.
func (s *EvidenceStore) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyFiles, len(files), s.maxFiles)
	}

	var saved []string
	var diskPaths []string
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedExtensions[ext] {
			s.cleanup(diskPaths)
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, fh.Filename)
		}

		name := uuid.New().String() + ext
		dst := filepath.Join(s.dir, name)
		if err := s.save(fh, dst); err != nil {
			s.cleanup(diskPaths)
			return nil, err
		}

		diskPaths = append(diskPaths, dst)
		saved = append(saved, s.publicPath+"/"+name)
	}

	return saved, nil
}

func (s *EvidenceStore) save(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func (s *EvidenceStore) cleanup(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			s.logger.Warn("failed to remove orphaned evidence file",
				zap.String("path", p),
				zap.Error(err))
		}
	}
}
