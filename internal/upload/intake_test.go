package upload

import (
	"bytes"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/common"
)

type filePart struct {
	field       string
	name        string
	contentType string
	body        []byte
}

func pdf(field, name string) filePart {
	return filePart{field: field, name: name, contentType: "application/pdf", body: []byte("%PDF-1.4 test")}
}

func newMultipartRequest(t *testing.T, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/applications", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newTestIntake(t *testing.T, limits Limits) (*Intake, string) {
	t.Helper()
	root := t.TempDir()
	intake := NewIntake(NewDiskStorage(root), limits, nil)
	intake.now = func() time.Time { return time.UnixMilli(1700000000000) }
	counter := 0
	intake.suffix = func() (string, error) {
		counter++
		return strings.Repeat("a", counter), nil
	}
	return intake, root
}

func storedFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestParseStoresFilesPerSlot(t *testing.T) {
	intake, root := newTestIntake(t, DefaultLimits())
	req := newMultipartRequest(t,
		map[string]string{"jobId": "job-1"},
		pdf("resume", "cv.PDF"),
		filePart{field: "portfolio", name: "shot.png", contentType: "image/png", body: []byte("png")},
	)

	batch, err := intake.Parse(req)
	require.NoError(t, err)
	require.Len(t, batch.Files, 2)
	assert.Equal(t, "job-1", batch.Value("jobId"))

	resume := batch.Resume()
	require.NotNil(t, resume)
	assert.Equal(t, "resume-1700000000000-a.pdf", resume.Filename)
	assert.Equal(t, "cv.PDF", resume.OriginalName)
	assert.Equal(t, "application/pdf", resume.MimeType)
	assert.Equal(t, int64(len("%PDF-1.4 test")), resume.Size)
	assert.Equal(t, "/uploads/resumes/resume-1700000000000-a.pdf", resume.URL)

	portfolio := batch.Portfolio()
	require.NotNil(t, portfolio)
	assert.Equal(t, "/uploads/portfolios/portfolio-1700000000000-aa.png", portfolio.URL)
	assert.Empty(t, batch.AdditionalDocuments())

	_, err = os.Stat(filepath.Join(root, DirResumes, resume.Filename))
	assert.NoError(t, err)
}

func TestParseRejectsExecutableResume(t *testing.T) {
	intake, root := newTestIntake(t, DefaultLimits())
	req := newMultipartRequest(t, nil, filePart{field: "resume", name: "cv.exe", contentType: "application/x-msdownload", body: []byte("MZ")})

	_, err := intake.Parse(req)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeInvalidFileType))
	assert.Empty(t, storedFiles(t, root))
}

func TestParseRequiresBothMimeAndExtension(t *testing.T) {
	intake, _ := newTestIntake(t, DefaultLimits())

	_, err := intake.Parse(newMultipartRequest(t, nil, filePart{field: "resume", name: "cv.pdf", contentType: "application/x-msdownload", body: []byte("x")}))
	assert.True(t, common.Is(err, common.CodeInvalidFileType))

	_, err = intake.Parse(newMultipartRequest(t, nil, filePart{field: "resume", name: "cv.exe", contentType: "application/pdf", body: []byte("x")}))
	assert.True(t, common.Is(err, common.CodeInvalidFileType))
}

func TestParseCleansUpWhenLaterFileIsTooLarge(t *testing.T) {
	intake, root := newTestIntake(t, Limits{MaxFileSize: 16, MaxFiles: 3})
	req := newMultipartRequest(t, nil,
		pdf("resume", "cv.pdf"),
		filePart{field: "additionalDocuments", name: "big.txt", contentType: "text/plain", body: bytes.Repeat([]byte("x"), 17)},
	)

	_, err := intake.Parse(req)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeFileTooLarge))
	assert.Empty(t, storedFiles(t, root))
}

func TestParseReportsBodyLimitAsFileTooLarge(t *testing.T) {
	intake, root := newTestIntake(t, DefaultLimits())
	req := newMultipartRequest(t, map[string]string{"jobId": "job-1"},
		filePart{field: "resume", name: "cv.pdf", contentType: "application/pdf", body: bytes.Repeat([]byte("x"), 64<<10)},
	)
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 4<<10)

	_, err := intake.Parse(req)
	require.Error(t, err)
	assert.Equal(t, common.CodeFileTooLarge, common.CodeOf(err))
	assert.Empty(t, storedFiles(t, root))
}

func TestParseEnforcesAggregateFileCount(t *testing.T) {
	intake, root := newTestIntake(t, DefaultLimits())
	req := newMultipartRequest(t, nil,
		pdf("resume", "cv.pdf"),
		pdf("additionalDocuments", "a.pdf"),
		pdf("additionalDocuments", "b.pdf"),
		pdf("additionalDocuments", "c.pdf"),
	)

	_, err := intake.Parse(req)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeTooManyFiles))
	assert.Empty(t, storedFiles(t, root))
}

func TestParseEnforcesPerSlotCount(t *testing.T) {
	intake, root := newTestIntake(t, DefaultLimits())
	req := newMultipartRequest(t, nil, pdf("resume", "a.pdf"), pdf("resume", "b.pdf"))

	_, err := intake.Parse(req)
	assert.True(t, common.Is(err, common.CodeTooManyFiles))
	assert.Empty(t, storedFiles(t, root))
}

func TestParseRejectsUnexpectedField(t *testing.T) {
	intake, root := newTestIntake(t, DefaultLimits())
	req := newMultipartRequest(t, nil, pdf("resume", "cv.pdf"), pdf("avatar", "me.pdf"))

	_, err := intake.Parse(req)
	assert.True(t, common.Is(err, common.CodeUnexpectedField))
	assert.Empty(t, storedFiles(t, root))
}

func TestParseRequiresMultipart(t *testing.T) {
	intake, _ := newTestIntake(t, DefaultLimits())
	req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	_, err := intake.Parse(req)
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestBatchRollbackAndCommit(t *testing.T) {
	intake, root := newTestIntake(t, DefaultLimits())

	batch, err := intake.Parse(newMultipartRequest(t, nil, pdf("resume", "cv.pdf")))
	require.NoError(t, err)
	batch.Commit()
	batch.Rollback()
	assert.Len(t, storedFiles(t, root), 1)

	batch, err = intake.Parse(newMultipartRequest(t, nil, pdf("resume", "cv2.pdf")))
	require.NoError(t, err)
	batch.Rollback()
	assert.Len(t, storedFiles(t, root), 1)
}

func TestIsServable(t *testing.T) {
	assert.True(t, IsServable(DirResumes, "resume-1-a.pdf"))
	assert.True(t, IsServable(DirPortfolios, "portfolio-1-a.png"))
	assert.False(t, IsServable(DirResumes, "resume-1-a.exe"))
	assert.False(t, IsServable("secrets", "a.pdf"))
	assert.False(t, IsServable(DirResumes, "../a.pdf"))
	assert.False(t, IsServable(DirResumes, ".pdf"))
}
