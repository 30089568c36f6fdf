package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MaxImageUploadBytes is the largest image accepted for upload.
const MaxImageUploadBytes = 10 * 1024 * 1024

// Upload is a file received from a reviewer and forwarded to the backend.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidateImageUpload checks size and content type before anything is sent.
func ValidateImageUpload(upload *Upload) error {
	if upload == nil || len(upload.Data) == 0 {
		return validationError("file", "an image file is required")
	}
	if len(upload.Data) > MaxImageUploadBytes {
		return validationError("file", "image must be 10 MB or smaller")
	}
	if !strings.HasPrefix(strings.ToLower(upload.ContentType), "image/") {
		return validationError("file", "only image files can be uploaded")
	}
	return nil
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	name   string
	upload *Upload
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(fields []formField, files []formFile) (*bytes.Buffer, string, error) {
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range files {
		if file.upload == nil {
			continue
		}
		contentType := file.upload.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.name), quoteEscaper.Replace(file.upload.Filename)))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.upload.Data); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buffer, writer.FormDataContentType(), nil
}

// sendMultipart posts a multipart body. The boundary content type comes from
// the writer, never from the caller.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields []formField, files []formFile) (json.RawMessage, error) {
	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return nil, fmt.Errorf("encode multipart %s %s: %w", method, path, err)
	}
	return c.send(ctx, call{method: method, path: path, body: body, contentType: contentType})
}
