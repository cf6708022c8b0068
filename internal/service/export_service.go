package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
	"github.com/tkmproject/tkm-api/pkg/export"
	"github.com/tkmproject/tkm-api/pkg/storage"
)

type recordSource interface {
	Project(view View, search, program string) []models.Document
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// Columns that never leave the server.
var internalKeys = map[string]bool{"id": true, "idempotencyKey": true}

// Class list columns.
var classListHeaders = []string{"Name", "Age", "Parent", "Phone", "Email"}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportFile is a rendered export ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService encodes the current dashboard projection and persists rendered files.
type ExportService struct {
	source   recordSource
	storage  fileStorage
	signer   *storage.SignedURLSigner
	encoders map[export.Format]export.Encoder
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService. Missing encoders fall back to the defaults.
func NewExportService(source recordSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, encoders map[export.Format]export.Encoder) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	defaults := export.Encoders()
	for format, enc := range encoders {
		defaults[format] = enc
	}
	return &ExportService{
		source:   source,
		storage:  store,
		signer:   signer,
		encoders: defaults,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Render encodes the projection selected by req.
func (s *ExportService) Render(_ context.Context, req dto.ExportRequest) (*ExportFile, error) {
	view, ok := ParseView(req.View)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown view "+req.View)
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	records := s.source.Project(view, req.Search, req.Program)

	var dataset export.Dataset
	switch req.Variant {
	case "":
		dataset = GenericDataset(records, reportTitle(view))
	case dto.ExportVariantClassList:
		if view != ViewStudents {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class list is only available for the students view")
		}
		dataset = ClassListDataset(records, classListTitle(req.Program), s.now())
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export variant "+req.Variant)
	}

	content, err := s.encoders[format].Encode(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("export rendered",
		zap.String("view", string(view)),
		zap.String("format", string(format)),
		zap.Int("records", len(records)),
	)

	return &ExportFile{
		Filename:    s.filename(view, req.Variant, format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

// Store renders req, saves it and returns a signed download link.
func (s *ExportService) Store(ctx context.Context, req dto.ExportRequest) (*dto.ExportLink, error) {
	file, err := s.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	relPath := path.Join(s.now().UTC().Format("20060102"), uuid.NewString()+"_"+file.Filename)
	if _, err := s.storage.Save(relPath, file.Content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &dto.ExportLink{
		Filename:  file.Filename,
		URL:       fmt.Sprintf("%s/export/%s", prefix, token),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a signed token to the stored file and its download name.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	name := path.Base(relPath)
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	return file, name, nil
}

// Cleanup removes stored exports older than the configured TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

// RunJanitor calls Cleanup every interval until ctx ends.
func (s *ExportService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Cleanup()
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

func (s *ExportService) filename(view View, variant string, format export.Format) string {
	parts := []string{"tkm", string(view)}
	if variant != "" {
		parts = append(parts, strings.ReplaceAll(variant, "-", "_"))
	}
	parts = append(parts, s.now().Format("2006-01-02"))
	return strings.Join(parts, "_") + "." + format.Extension()
}

func reportTitle(view View) string {
	switch view {
	case ViewStudents:
		return "Student Registrations"
	case ViewTeachers:
		return "Teacher Applications"
	case ViewAnalytics:
		return "Registration Analytics"
	default:
		return "All Submissions"
	}
}

func classListTitle(program string) string {
	if program == "" {
		return "Class List"
	}
	return "Class List - " + program
}

// GenericDataset dumps every data key as a column, followed by status and
// submission time. Internal identifiers are left out.
func GenericDataset(records []models.Document, title string) export.Dataset {
	keys := map[string]bool{}
	for _, doc := range records {
		for key := range doc.Data {
			if !internalKeys[key] {
				keys[key] = true
			}
		}
	}
	delete(keys, "status")
	delete(keys, "submittedAt")

	headers := make([]string, 0, len(keys)+2)
	for key := range keys {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	if len(records) > 0 {
		headers = append(headers, "status", "submittedAt")
	}

	rows := make([]map[string]string, 0, len(records))
	for _, doc := range records {
		row := make(map[string]string, len(headers))
		for key := range keys {
			row[key] = cellValue(doc.Data[key])
		}
		row["status"] = displayStatus(doc.Status)
		row["submittedAt"] = doc.SubmittedAt.Format("2006-01-02 15:04")
		rows = append(rows, row)
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows}
}

// ClassListDataset renders the fixed class list columns with the student's
// age derived from the date of birth.
func ClassListDataset(records []models.Document, title string, now time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, doc := range records {
		age := ""
		if birth, err := time.Parse("2006-01-02", doc.String(validation.FieldStudentDOB)); err == nil {
			age = fmt.Sprintf("%d", validation.AgeAt(birth, now))
		}
		rows = append(rows, map[string]string{
			"Name":   doc.String(validation.FieldStudentName),
			"Age":    age,
			"Parent": doc.String(validation.FieldParentName),
			"Phone":  doc.String(validation.FieldPhone),
			"Email":  doc.String(validation.FieldEmail),
		})
	}
	headers := classListHeaders
	if len(records) == 0 {
		headers = nil
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows}
}

func cellValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case []string, []interface{}:
		return strings.Join(stringList(val), ", ")
	default:
		return fmt.Sprint(val)
	}
}
