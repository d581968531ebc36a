package multipart

import (
	"bytes"
	"io"
	"mime"
	"net/textproto"
	"strings"
)

// OpenFunc opens a part's content. It is called once per write of the body.
type OpenFunc func() (io.ReadCloser, error)

// Part is a single section of a multipart body.
type Part struct {
	Header textproto.MIMEHeader
	Size   int64
	open   OpenFunc
}

// FieldName returns the form field name from the Content-Disposition header.
func (p Part) FieldName() string {
	return p.dispositionParam("name")
}

// FileName returns the file name from the Content-Disposition header,
// or an empty string for plain fields.
func (p Part) FileName() string {
	return p.dispositionParam("filename")
}

func (p Part) dispositionParam(key string) string {
	_, params, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}

	return params[key]
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func fieldHeader(name string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+escapeQuotes(name)+`"`)

	return h
}

func fileHeader(field, filename, contentType string) textproto.MIMEHeader {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+escapeQuotes(field)+`"; filename="`+escapeQuotes(filename)+`"`)
	h.Set("Content-Type", contentType)

	return h
}

func bytesOpener(content []byte) OpenFunc {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	}
}
