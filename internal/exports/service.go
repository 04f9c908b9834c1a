package exports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/nutridesk/internal/blob"
	"github.com/fdg312/nutridesk/internal/daylog"
	"github.com/fdg312/nutridesk/internal/menus"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidKind   = errors.New("kind must be menu or journal")
	ErrInvalidFormat = errors.New("format must be pdf or csv")
	ErrMenuRequired  = errors.New("menuId is required")
	ErrNotFound      = errors.New("export not found")
	ErrNotReady      = errors.New("export failed to render")
)

// Logger is the subset of *log.Logger the service uses.
type Logger interface {
	Printf(format string, v ...any)
}

// Options holds the download and range settings of the service.
type Options struct {
	MaxRangeDays      int
	PresignTTLSeconds int
	PublicBaseURL     string
	PreferPublicURL   bool
}

// Service renders exports and keeps their files in a blob store.
type Service struct {
	storage storage.ExportsStorage
	menus   *menus.Service
	days    *daylog.Service
	blob    blob.Store
	opts    Options
	logger  Logger
}

// NewService creates a new exports service.
func NewService(exportsStorage storage.ExportsStorage, menusService *menus.Service, daysService *daylog.Service, blobStore blob.Store, opts Options, logger Logger) *Service {
	return &Service{
		storage: exportsStorage,
		menus:   menusService,
		days:    daysService,
		blob:    blobStore,
		opts:    opts,
		logger:  logger,
	}
}

// Create renders the export and stores it. For journals req.UserID must
// already be the resolved subject. A failed upload is kept with status
// failed so the caller can see it in the list.
func (s *Service) Create(ctx context.Context, ownerID string, isAdmin bool, req CreateExportRequest) (*storage.Export, error) {
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if req.Kind != KindMenu && req.Kind != KindJournal {
		return nil, ErrInvalidKind
	}
	if req.Format != FormatPDF && req.Format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	export := &storage.Export{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Kind:        req.Kind,
		Format:      req.Format,
	}

	var data []byte
	var err error
	switch req.Kind {
	case KindMenu:
		data, err = s.renderMenu(ctx, ownerID, isAdmin, req, export)
	case KindJournal:
		data, err = s.renderJournal(ctx, req, export)
	}
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/%s/%s.%s", ownerID, export.ID, req.Format)
	size, err := s.blob.PutObject(ctx, key, data, contentType(req.Format))
	if err != nil {
		msg := err.Error()
		export.Status = StatusFailed
		export.Error = &msg
		if saveErr := s.storage.Create(ctx, export); saveErr != nil {
			s.logf("WARN exports: failed to record failed export %s: %v", export.ID, saveErr)
		}
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	export.ObjectKey = &key
	export.SizeBytes = size
	export.Status = StatusReady
	if err := s.storage.Create(ctx, export); err != nil {
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}
	return export, nil
}

func (s *Service) renderMenu(ctx context.Context, callerID string, isAdmin bool, req CreateExportRequest, export *storage.Export) ([]byte, error) {
	if strings.TrimSpace(req.MenuID) == "" {
		return nil, ErrMenuRequired
	}
	id, err := uuid.Parse(req.MenuID)
	if err != nil {
		return nil, menus.ErrNotFound
	}

	template, err := s.menus.Template(ctx, callerID, isAdmin, id)
	if err != nil {
		return nil, err
	}
	export.SubjectID = id.String()

	if export.Format == FormatCSV {
		return generateMenuCSV(template)
	}
	return generateMenuPDF(template)
}

func (s *Service) renderJournal(ctx context.Context, req CreateExportRequest, export *storage.Export) ([]byte, error) {
	journal, err := s.days.Summarize(ctx, req.UserID, req.From, req.To, s.opts.MaxRangeDays)
	if err != nil {
		return nil, err
	}
	export.SubjectID = req.UserID
	export.FromDate = journal.From
	export.ToDate = journal.To

	if export.Format == FormatCSV {
		return generateJournalCSV(journal)
	}
	return generateJournalPDF(journal)
}

// Get returns an export visible to the caller. Other callers' exports are
// reported as missing; admins see all.
func (s *Service) Get(ctx context.Context, callerID string, isAdmin bool, id uuid.UUID) (*storage.Export, error) {
	export, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	if export.OwnerUserID != callerID && !isAdmin {
		return nil, ErrNotFound
	}
	return export, nil
}

// List returns the caller's exports, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]storage.Export, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	exports, err := s.storage.List(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return exports, nil
}

// Delete removes the file and the metadata. A file that cannot be deleted
// is logged and left behind.
func (s *Service) Delete(ctx context.Context, callerID string, isAdmin bool, id uuid.UUID) error {
	export, err := s.Get(ctx, callerID, isAdmin, id)
	if err != nil {
		return err
	}

	if export.ObjectKey != nil {
		if err := s.blob.DeleteObject(ctx, *export.ObjectKey); err != nil {
			s.logf("WARN exports: failed to delete object %s: %v", *export.ObjectKey, err)
		}
	}

	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete export metadata: %w", err)
	}
	return nil
}

// DirectURL returns a URL the client can fetch the file from without the
// API, or "" when the file must be streamed.
func (s *Service) DirectURL(ctx context.Context, export *storage.Export) (string, error) {
	if export.ObjectKey == nil {
		return "", ErrNotReady
	}
	if s.opts.PreferPublicURL && s.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + *export.ObjectKey, nil
	}
	url, err := s.blob.PresignGet(ctx, *export.ObjectKey, s.opts.PresignTTLSeconds)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

// DownloadURL is DirectURL with a fallback to the API download endpoint.
func (s *Service) DownloadURL(ctx context.Context, export *storage.Export, baseURL string) (string, error) {
	url, err := s.DirectURL(ctx, export)
	if err != nil {
		return "", err
	}
	if url == "" {
		url = fmt.Sprintf("%s/v1/exports/%s/download", strings.TrimSuffix(baseURL, "/"), export.ID)
	}
	return url, nil
}

// Data returns the stored file bytes and content type.
func (s *Service) Data(ctx context.Context, export *storage.Export) ([]byte, string, error) {
	if export.ObjectKey == nil {
		return nil, "", ErrNotReady
	}
	data, err := s.blob.GetObject(ctx, *export.ObjectKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read export: %w", err)
	}
	return data, contentType(export.Format), nil
}

func (s *Service) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}
