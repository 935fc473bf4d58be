package handlers

import (
	"errors"
	"io"
	"net/http"

	gwerrors "github.com/transpoze/drivegate/pkg/errors"
	"github.com/transpoze/drivegate/pkg/gateway"
	"github.com/transpoze/drivegate/pkg/staging"
)

const (
	// multipartFileField is the form field carrying the file.
	multipartFileField = "file"

	// maxFieldBytes bounds each non-file form field.
	maxFieldBytes = 4 << 10

	// multipartOverhead is allowed on top of the staging limit for
	// boundaries, part headers and text fields.
	multipartOverhead = 1 << 20
)

// multipartForm is a streamed multipart body: text fields plus at most one
// staged file.
type multipartForm struct {
	fields   map[string]string
	file     *staging.File
	fileMime string
}

func (f *multipartForm) value(name string) string {
	return f.fields[name]
}

// discard removes the staged file, if any.
func (f *multipartForm) discard() {
	if f.file != nil {
		f.file.Remove()
	}
}

// readMultipart streams r's multipart body, staging the "file" part on
// disk as it arrives so large recordings are never held in memory.
func readMultipart(w http.ResponseWriter, r *http.Request, svc *gateway.Service) (*multipartForm, error) {
	const op = "api.multipart"

	r.Body = http.MaxBytesReader(w, r.Body, svc.Staging().MaxBytes()+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, gwerrors.NewInvalidArgumentsError(op, "expected a multipart/form-data body")
	}

	form := &multipartForm{fields: make(map[string]string)}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			form.discard()
			return nil, bodyError(op, svc, err)
		}

		name := part.FormName()
		switch {
		case name == "":
			_ = part.Close()

		case name == multipartFileField && part.FileName() != "":
			if form.file != nil {
				_ = part.Close()
				form.discard()
				return nil, gwerrors.NewInvalidArgumentsError(op, "only one file may be uploaded")
			}
			staged, err := svc.Stage(part, part.FileName())
			_ = part.Close()
			if err != nil {
				form.discard()
				return nil, stageError(op, svc, err)
			}
			form.file = staged
			form.fileMime = part.Header.Get("Content-Type")

		default:
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			_ = part.Close()
			if err != nil {
				form.discard()
				return nil, bodyError(op, svc, err)
			}
			if len(value) > maxFieldBytes {
				form.discard()
				return nil, gwerrors.NewInvalidArgumentsError(op, "form field "+name+" is too long")
			}
			form.fields[name] = string(value)
		}
	}

	if form.file == nil {
		return nil, gwerrors.NewInvalidArgumentsError(op, "No file uploaded")
	}
	return form, nil
}

// bodyError classifies a failure reading the request body.
func bodyError(op string, svc *gateway.Service, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return gwerrors.NewPayloadTooLargeError(op, uint64(svc.Staging().MaxBytes()))
	}
	if gwerrors.CodeOf(err) != 0 {
		return err
	}
	return gwerrors.NewInvalidArgumentsError(op, "malformed multipart body: "+err.Error())
}

// stageError classifies a failure staging the file part. Local disk
// failures keep their untyped error and surface as 500.
func stageError(op string, svc *gateway.Service, err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return gwerrors.NewPayloadTooLargeError(op, uint64(svc.Staging().MaxBytes()))
	case errors.Is(err, io.ErrUnexpectedEOF):
		return gwerrors.NewInvalidArgumentsError(op, "truncated multipart body")
	default:
		return err
	}
}
