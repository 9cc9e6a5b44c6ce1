package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateImageFile_Success(t *testing.T) {
	for _, name := range []string{"front.png", "front.jpg", "front.JPEG"} {
		content := []byte("fake image content")
		fileHeader := createTestFileHeader(name, int64(len(content)), content)
		require.NotNil(t, fileHeader)

		assert.NoError(t, ValidateImageFile(fileHeader), name)
	}
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("large.png", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateImageFile_InvalidFormat(t *testing.T) {
	for _, name := range []string{"test.gif", "test.pdf", "noextension"} {
		content := []byte("fake content")
		fileHeader := createTestFileHeader(name, int64(len(content)), content)
		require.NotNil(t, fileHeader)

		err := ValidateImageFile(fileHeader)
		fileErr, ok := err.(*FileUploadError)
		require.True(t, ok, "Error should be of type FileUploadError for %s", name)
		assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("a.PNG"))
	assert.Equal(t, "image/jpeg", ContentType("a.jpg"))
	assert.Equal(t, "application/octet-stream", ContentType("a.gif"))
}

func TestPhotoName(t *testing.T) {
	a := PhotoName(12, "Front View.JPG")
	b := PhotoName(12, "Front View.JPG")

	assert.True(t, strings.HasPrefix(a, "order-12-"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, filepath.Base(a))
}

func TestSaveUploadedFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("photo bytes")
	fileHeader := createTestFileHeader("front.png", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	require.NoError(t, SaveUploadedFile(fileHeader, dir, "order-1-x.png"))

	saved, err := os.ReadFile(filepath.Join(dir, "order-1-x.png"))
	require.NoError(t, err)
	assert.Equal(t, content, saved)

	assert.Error(t, SaveUploadedFile(fileHeader, dir, "../escape.png"))
}

func TestGetImageURL(t *testing.T) {
	assert.Equal(t, "", GetImageURL(""))
	assert.Equal(t, "/api/v1/uploads/order-1-x.png", GetImageURL("order-1-x.png"))
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{Code: "TEST_ERROR", Message: "Test error message"}
	assert.Equal(t, "Test error message", err.Error())
}
