package upload

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
)

const (
	DefaultMaxFileSize = 5 << 20
	DefaultMaxFiles    = 3
	maxFieldBytes      = 64 << 10
)

type Limits struct {
	MaxFileSize int64
	MaxFiles    int
}

func DefaultLimits() Limits {
	return Limits{MaxFileSize: DefaultMaxFileSize, MaxFiles: DefaultMaxFiles}
}

type File struct {
	Slot Slot
	Dir  string
	application.FileDescriptor
}

// Batch holds the files and plain form values of one multipart submission.
// Written files are deleted by Rollback unless Commit was called first.
type Batch struct {
	Files  []File
	Values map[string]string

	storage   Storage
	logger    *slog.Logger
	committed bool
}

func (b *Batch) Value(name string) string {
	return b.Values[name]
}

func (b *Batch) Resume() *application.FileDescriptor {
	return b.first(SlotResume)
}

func (b *Batch) Portfolio() *application.FileDescriptor {
	return b.first(SlotPortfolio)
}

func (b *Batch) AdditionalDocuments() []application.FileDescriptor {
	out := []application.FileDescriptor{}
	for _, f := range b.Files {
		if f.Slot == SlotAdditionalDocuments {
			out = append(out, f.FileDescriptor)
		}
	}
	return out
}

func (b *Batch) first(slot Slot) *application.FileDescriptor {
	for _, f := range b.Files {
		if f.Slot == slot {
			descriptor := f.FileDescriptor
			return &descriptor
		}
	}
	return nil
}

func (b *Batch) Commit() {
	b.committed = true
}

func (b *Batch) Rollback() {
	if b == nil || b.committed {
		return
	}
	for _, f := range b.Files {
		if err := b.storage.Remove(f.Dir, f.Filename); err != nil && b.logger != nil {
			b.logger.Error("upload cleanup failed", slog.String("file", f.Filename), slog.String("error", err.Error()))
		}
	}
	b.Files = nil
}

type Intake struct {
	storage Storage
	limits  Limits
	logger  *slog.Logger
	now     func() time.Time
	suffix  func() (string, error)
}

func NewIntake(storage Storage, limits Limits, logger *slog.Logger) *Intake {
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = DefaultMaxFileSize
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = DefaultMaxFiles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Intake{storage: storage, limits: limits, logger: logger, now: time.Now, suffix: randomSuffix}
}

// Parse streams the multipart body of r, validating and storing every file
// part. On error all files stored so far are removed before returning.
func (i *Intake) Parse(r *http.Request) (*Batch, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, common.NewError(common.CodeValidation, "multipart/form-data body is required", err)
	}
	batch := &Batch{Values: map[string]string{}, storage: i.storage, logger: i.logger}
	perSlot := map[Slot]int{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return batch, nil
		}
		if err != nil {
			batch.Rollback()
			var bodyTooLarge *http.MaxBytesError
			if errors.As(err, &bodyTooLarge) {
				return nil, common.NewError(common.CodeFileTooLarge, fmt.Sprintf("request body exceeds the %d byte limit", bodyTooLarge.Limit), err)
			}
			return nil, common.NewError(common.CodeValidation, "malformed multipart body", err)
		}
		if err := i.consume(batch, perSlot, part); err != nil {
			_ = part.Close()
			batch.Rollback()
			return nil, err
		}
		_ = part.Close()
	}
}

func (i *Intake) consume(batch *Batch, perSlot map[Slot]int, part *multipart.Part) error {
	field := part.FormName()
	if part.FileName() == "" {
		value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
		if err != nil {
			return common.NewError(common.CodeValidation, "malformed multipart field", err)
		}
		if len(value) > maxFieldBytes {
			return common.NewValidationError("field too large", map[string]string{field: "value exceeds 64KB"})
		}
		batch.Values[field] = string(value)
		return nil
	}

	slot, rule, ok := lookupSlot(field)
	if !ok {
		return common.NewError(common.CodeUnexpectedField, fmt.Sprintf("unexpected file field %q", field), nil)
	}
	if perSlot[slot] >= rule.maxCount || len(batch.Files) >= i.limits.MaxFiles {
		return common.NewError(common.CodeTooManyFiles, fmt.Sprintf("too many files: at most %d files are allowed", i.limits.MaxFiles), nil)
	}
	original := filepath.Base(part.FileName())
	mimeType := part.Header.Get("Content-Type")
	if !rule.allows(original, mimeType) {
		return common.NewError(common.CodeInvalidFileType, fmt.Sprintf("invalid file type for %s: %s", field, original), nil)
	}

	suffix, err := i.suffix()
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to name upload", err)
	}
	ext := strings.ToLower(filepath.Ext(original))
	name := fmt.Sprintf("%s-%d-%s%s", slot, i.now().UnixMilli(), suffix, ext)
	size, err := i.storage.Save(rule.dir, name, part, i.limits.MaxFileSize)
	var bodyTooLarge *http.MaxBytesError
	if errors.As(err, &bodyTooLarge) {
		return common.NewError(common.CodeFileTooLarge, fmt.Sprintf("request body exceeds the %d byte limit", bodyTooLarge.Limit), err)
	}
	if errors.Is(err, ErrTooLarge) {
		return common.NewError(common.CodeFileTooLarge, fmt.Sprintf("file %s exceeds the %dMB limit", original, i.limits.MaxFileSize>>20), nil)
	}
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to store upload", err)
	}
	perSlot[slot]++
	batch.Files = append(batch.Files, File{
		Slot: slot,
		Dir:  rule.dir,
		FileDescriptor: application.FileDescriptor{
			Filename:     name,
			OriginalName: original,
			MimeType:     normalizeMediaType(mimeType),
			Size:         size,
			URL:          PublicPath(rule.dir, name),
		},
	})
	return nil
}

func PublicPath(dir, name string) string {
	return "/uploads/" + dir + "/" + name
}

func randomSuffix() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
