package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile              = errors.New("no file provided")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ImageValidator sniffs the content of fh, the declared Content-Type is not
// trusted. On success the opened file is rewound and returned with its mime type.
func ImageValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, *mimetype.MIME, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, nil, ErrNoFile
	}

	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, nil, err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, nil, err
	}

	if !mimetype.EqualsAny(mime.String(), allowedImageTypes...) {
		f.Close()
		return http.StatusBadRequest, nil, nil, ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, nil, err
	}

	return http.StatusOK, f, mime, nil
}
