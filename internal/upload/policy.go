package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/gabriel-vasile/mimetype"
)

const (
	ListingImagesField = "images"
	DocumentField      = "document"
	ProfileField       = "profilePicture"

	MaxListingImages = 10

	DocumentsDir = "documents"
	ProfilesDir  = "profiles"

	formMemory   = 8 << 20
	formOverhead = 1 << 20
)

var (
	ImageTypes    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	DocumentTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf"}
)

// Rule describes what one multipart field may carry.
type Rule struct {
	Field    string
	Dir      string
	MaxCount int
	MaxSize  int64
	Allowed  []string
}

// Policy is the set of file fields an endpoint accepts.
type Policy struct {
	Rules []Rule
}

// ListingImages accepts up to MaxListingImages images stored under dir.
func ListingImages(dir string, maxSize int64) Policy {
	return Policy{Rules: []Rule{{
		Field:    ListingImagesField,
		Dir:      dir,
		MaxCount: MaxListingImages,
		MaxSize:  maxSize,
		Allowed:  ImageTypes,
	}}}
}

// Registration accepts an identity document (image or PDF) and a profile picture.
func Registration(imageMax, documentMax int64) Policy {
	return Policy{Rules: []Rule{
		{Field: DocumentField, Dir: DocumentsDir, MaxCount: 1, MaxSize: documentMax, Allowed: DocumentTypes},
		{Field: ProfileField, Dir: ProfilesDir, MaxCount: 1, MaxSize: imageMax, Allowed: ImageTypes},
	}}
}

func (p Policy) rule(field string) (Rule, bool) {
	for _, r := range p.Rules {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

func (p Policy) maxBody() int64 {
	total := int64(formOverhead)
	for _, r := range p.Rules {
		total += int64(r.MaxCount) * r.MaxSize
	}
	return total
}

// Result is a parsed multipart submission with files replaced by stored paths.
type Result struct {
	Values map[string][]string
	Files  map[string][]string
}

// Paths returns the stored paths of field, never nil.
func (r *Result) Paths(field string) []string {
	if r == nil || len(r.Files[field]) == 0 {
		return []string{}
	}
	return r.Files[field]
}

func (r *Result) First(field string) string {
	if r == nil || len(r.Files[field]) == 0 {
		return ""
	}
	return r.Files[field][0]
}

// All returns every stored path, used to clean up after a failed request.
func (r *Result) All() []string {
	if r == nil {
		return nil
	}
	var all []string
	for _, paths := range r.Files {
		all = append(all, paths...)
	}
	return all
}

type checkedPart struct {
	rule        Rule
	header      *multipart.FileHeader
	contentType string
}

// Process parses the multipart body of r, checks every file part against the
// policy and stores the accepted files. Nothing is stored when any part is
// rejected. If storing fails midway the files already stored are removed.
func (p Policy) Process(w http.ResponseWriter, r *http.Request, store domain.FileStorage) (*Result, error) {
	r.Body = http.MaxBytesReader(w, r.Body, p.maxBody())
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrUploadRejected, tooLarge.Limit)
		}
		return nil, domain.NewValidationError("body", "malformed multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	parts, err := p.check(r.MultipartForm.File)
	if err != nil {
		return nil, err
	}

	res := &Result{Values: r.MultipartForm.Value, Files: make(map[string][]string)}
	for _, part := range parts {
		path, err := p.store(r.Context(), store, part)
		if err != nil {
			Discard(r.Context(), store, res.All())
			return nil, err
		}
		res.Files[part.rule.Field] = append(res.Files[part.rule.Field], path)
	}
	return res, nil
}

func (p Policy) check(files map[string][]*multipart.FileHeader) ([]checkedPart, error) {
	fields := make([]string, 0, len(files))
	for field := range files {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []checkedPart
	for _, field := range fields {
		headers := files[field]
		rule, ok := p.rule(field)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected file field %q", domain.ErrUploadRejected, field)
		}
		if len(headers) > rule.MaxCount {
			return nil, fmt.Errorf("%w: at most %d file(s) allowed for %q", domain.ErrUploadRejected, rule.MaxCount, field)
		}
		for _, h := range headers {
			if h.Size > rule.MaxSize {
				return nil, fmt.Errorf("%w: %s exceeds the %d byte limit", domain.ErrUploadRejected, h.Filename, rule.MaxSize)
			}
			ct, err := sniff(h)
			if err != nil {
				return nil, err
			}
			if !allowed(ct, rule.Allowed) {
				return nil, fmt.Errorf("%w: %s has unsupported type %s", domain.ErrUploadRejected, h.Filename, ct.String())
			}
			parts = append(parts, checkedPart{rule: rule, header: h, contentType: ct.String()})
		}
	}
	return parts, nil
}

func (p Policy) store(ctx context.Context, store domain.FileStorage, part checkedPart) (string, error) {
	f, err := part.header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", part.header.Filename, err)
	}
	defer f.Close()
	return store.Save(ctx, part.rule.Dir, part.header.Filename, part.contentType, f, part.header.Size)
}

func sniff(h *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", h.Filename, err)
	}
	defer f.Close()
	ct, err := mimetype.DetectReader(io.LimitReader(f, 3072))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s", domain.ErrUploadRejected, h.Filename)
	}
	return ct, nil
}

func allowed(ct *mimetype.MIME, types []string) bool {
	for _, t := range types {
		if ct.Is(t) {
			return true
		}
	}
	return false
}

// Discard removes stored files, ignoring failures.
func Discard(ctx context.Context, store domain.FileStorage, paths []string) {
	for _, p := range paths {
		_ = store.Remove(ctx, p)
	}
}
