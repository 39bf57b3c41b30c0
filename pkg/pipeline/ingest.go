package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	"github.com/google/uuid"
)

const defaultStagingDir = "uploads"

// StagedFile is a request-scoped local copy of an uploaded recording.
type StagedFile struct {
	Path        string
	Size        int64
	MIMEType    string
	DisplayName string

	once      sync.Once
	removed   atomic.Bool
	removeErr error
}

// Remove deletes the local copy. Only the first call touches the filesystem;
// later calls return the first call's result.
func (f *StagedFile) Remove() error {
	if f == nil {
		return nil
	}
	f.once.Do(func() {
		err := os.Remove(f.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.removeErr = utils.WrapIfNotNil(err)
		}
		f.removed.Store(true)
	})
	return f.removeErr
}

func (f *StagedFile) Removed() bool {
	return f != nil && f.removed.Load()
}

// Stager writes uploads to the staging directory.
type Stager struct {
	dir      string
	maxBytes int64
}

// NewStager returns a Stager rooted at dir. maxBytes <= 0 disables the size
// limit.
func NewStager(dir string, maxBytes int64) *Stager {
	if strings.TrimSpace(dir) == "" {
		dir = defaultStagingDir
	}
	return &Stager{dir: dir, maxBytes: maxBytes}
}

func (s *Stager) Stage(ctx context.Context, upload model.Upload) (*StagedFile, error) {
	log := logging.NewLogger(ctx)
	if upload.Body == nil {
		err := model.NewError(model.KindIngestionRejected, "No audio file uploaded.", nil)
		log.Errorf("error: %v", err)
		return nil, err
	}

	mimeType, err := resolveMediaMIMEType(upload.Filename, upload.ContentType)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, model.NewError(model.KindIngestionRejected, "Unsupported audio file type.", err)
	}

	if err = os.MkdirAll(s.dir, 0o755); err != nil {
		log.Errorf("error: %v", err)
		return nil, model.NewError(model.KindIngestionRejected, "Audio file could not be staged.", utils.WrapIfNotNil(err))
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	staged := &StagedFile{
		Path:        filepath.Join(s.dir, uuid.NewString()+ext),
		MIMEType:    mimeType,
		DisplayName: displayNameFor(upload.Filename),
	}

	size, err := s.write(staged.Path, upload.Body)
	if err != nil {
		if removeErr := staged.Remove(); removeErr != nil {
			log.Warnf("staged file cleanup failed path=%q: %v", staged.Path, removeErr)
		}
		log.Errorf("error: %v", err)
		return nil, err
	}
	staged.Size = size

	log.Debugf("pipeline.Stager.Stage path=%q bytes=%d mime=%q", staged.Path, size, mimeType)
	return staged, nil
}

func (s *Stager) write(path string, body io.Reader) (int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, model.NewError(model.KindIngestionRejected, "Audio file could not be staged.", utils.WrapIfNotNil(err))
	}
	return s.copyTo(file, body)
}

// copyTo drains body into dst and closes it. A failed close means the staged
// copy may be truncated, so it rejects the upload like a failed copy.
func (s *Stager) copyTo(dst io.WriteCloser, body io.Reader) (int64, error) {
	reader := body
	if s.maxBytes > 0 {
		reader = io.LimitReader(body, s.maxBytes+1)
	}

	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()
	if err != nil {
		return 0, model.NewError(model.KindIngestionRejected, "Audio file could not be staged.", utils.WrapIfNotNil(err))
	}
	if closeErr != nil {
		return 0, model.NewError(model.KindIngestionRejected, "Audio file could not be staged.", utils.WrapIfNotNil(closeErr))
	}
	if written == 0 {
		return 0, model.NewError(model.KindIngestionRejected, "No audio file uploaded.", errors.New("payload is empty"))
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		return 0, model.NewError(
			model.KindIngestionRejected,
			fmt.Sprintf("Audio file exceeds the %d byte limit.", s.maxBytes),
			errors.New("payload too large"),
		)
	}
	return written, nil
}

func displayNameFor(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) {
		return "audio"
	}
	return name
}

// Ingestor stages an upload and hands it to the provider's file store.
type Ingestor struct {
	stager *Stager
	store  model.MediaStore
}

func NewIngestor(stager *Stager, store model.MediaStore) *Ingestor {
	return &Ingestor{stager: stager, store: store}
}

// Ingest returns the provider handle and the staged file. The caller owns the
// staged file on success and must Remove it when the workflow ends; on failure
// it has already been removed.
func (i *Ingestor) Ingest(ctx context.Context, upload model.Upload) (*model.MediaAsset, *StagedFile, error) {
	log := logging.NewLogger(ctx)

	staged, err := i.stager.Stage(ctx, upload)
	if err != nil {
		return nil, nil, err
	}

	asset, err := i.store.UploadFile(ctx, staged.Path, staged.MIMEType, staged.DisplayName)
	if err != nil {
		if removeErr := staged.Remove(); removeErr != nil {
			log.Warnf("staged file cleanup failed path=%q: %v", staged.Path, removeErr)
		}
		log.Errorf("error: %v", err)
		return nil, nil, classifyUploadError(err)
	}
	if asset == nil || strings.TrimSpace(asset.Name) == "" {
		if removeErr := staged.Remove(); removeErr != nil {
			log.Warnf("staged file cleanup failed path=%q: %v", staged.Path, removeErr)
		}
		err = errors.New("provider returned no file handle")
		log.Errorf("error: %v", err)
		return nil, nil, model.NewError(model.KindUpstreamUnavailable, "The provider did not accept the upload.", err)
	}
	if asset.MIMEType == "" {
		asset.MIMEType = staged.MIMEType
	}

	log.Infof("pipeline.Ingestor.Ingest name=%q state=%s bytes=%d", asset.Name, asset.State, staged.Size)
	return asset, staged, nil
}

func classifyUploadError(err error) error {
	if providerErr, ok := model.AsProviderError(err); ok && providerErr.IsClientError() {
		return model.NewError(model.KindIngestionRejected, "The provider rejected the audio file.", err)
	}
	return model.NewError(model.KindUpstreamUnavailable, "The provider is unavailable for uploads.", err)
}
