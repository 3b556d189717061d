package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
)

// ImageField is the multipart field carrying the optional image file.
const ImageField = "img"

type listingPayload struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Condition   *string  `json:"condition"`
	Category    *string  `json:"category"`
}

func (p listingPayload) fields() domain.Fields {
	return domain.Fields{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Condition:   p.Condition,
		Category:    p.Category,
	}
}

// decodeListing reads listing fields and an optional image from a multipart
// form or a JSON body. Absent keys stay nil.
func decodeListing(w http.ResponseWriter, r *http.Request, maxBytes int64) (domain.Fields, *domain.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	switch mediaType(r) {
	case "multipart/form-data":
		if err := parseMultipart(r, maxBytes); err != nil {
			return domain.Fields{}, nil, err
		}
		fields, err := formFields(r.MultipartForm)
		if err != nil {
			return domain.Fields{}, nil, err
		}
		upload, err := formUpload(r)
		if err != nil {
			return domain.Fields{}, nil, err
		}
		return fields, upload, nil
	case "application/json", "":
		var p listingPayload
		if err := decodeJSON(r, &p); err != nil {
			return domain.Fields{}, nil, err
		}
		return p.fields(), nil, nil
	default:
		return domain.Fields{}, nil, errNotMultipart
	}
}

// decodePhoto requires a multipart form with an image file.
func decodePhoto(w http.ResponseWriter, r *http.Request, maxBytes int64) (domain.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if mediaType(r) != "multipart/form-data" {
		return domain.Upload{}, errNotMultipart
	}
	if err := parseMultipart(r, maxBytes); err != nil {
		return domain.Upload{}, err
	}
	upload, err := formUpload(r)
	if err != nil {
		return domain.Upload{}, err
	}
	if upload == nil {
		return domain.Upload{}, domain.NewValidationError(ImageField, "is required")
	}
	return *upload, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return classifyBodyError(err)
	}
	return nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func parseMultipart(r *http.Request, maxBytes int64) error {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return classifyBodyError(err)
	}
	return nil
}

func classifyBodyError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return errUploadTooBig
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func formFields(form *multipart.Form) (domain.Fields, error) {
	value := func(key string) *string {
		if vs, ok := form.Value[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}

	fields := domain.Fields{
		Title:       value("title"),
		Description: value("description"),
		Condition:   value("condition"),
		Category:    value("category"),
	}
	if raw := value("price"); raw != nil {
		price, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			return domain.Fields{}, domain.NewValidationError("price", "must be a number")
		}
		fields.Price = &price
	}
	return fields, nil
}

// formUpload returns nil when no file, or an empty one, was sent.
func formUpload(r *http.Request) (*domain.Upload, error) {
	file, header, err := r.FormFile(ImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyBodyError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, classifyBodyError(err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &domain.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
