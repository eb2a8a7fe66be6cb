package upload

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/homefindr/estate-api/internal/api"
	"github.com/homefindr/estate-api/internal/types"
)

// maxUploadBytes caps a whole multipart request (6 images).
const maxUploadBytes = 32 << 20

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	UploadImages(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	uploadService UploadService
	logger        *slog.Logger
}

func NewHandlerImpl(uploadService UploadService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		uploadService: uploadService,
		logger:        logger,
	}
}

// UploadImages godoc
// @Summary      Upload Images
// @Description  Forwards up to 6 images to the hosted image store. URLs come back in submission order; the first is the cover image.
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Success      200 {object} map[string]interface{} "Public URLs"
// @Failure      400 {object} types.Response "Invalid Payload"
// @Failure      502 {object} types.Response "Image Store Unavailable"
// @Security     BearerAuth
// @Router       /upload [post]
func (h *HandlerImpl) UploadImages(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UploadHandler").Start(r.Context(), "UploadImages")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UploadImages"))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		l.WarnContext(ctx, "Failed to parse multipart form", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "At least one image file is required")
		return
	}
	if len(files) > types.MaxListingImages {
		api.ErrorResponse(w, r, http.StatusBadRequest, "You can only upload up to 6 images per request")
		return
	}
	span.SetAttributes(attribute.Int("upload.count", len(files)))

	// Uploads run concurrently; urls is indexed by submission position so
	// the response preserves file order (first file = cover image).
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		g.Go(func() error {
			return h.uploadOne(gctx, fh, &urls[i])
		})
	}

	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Image upload failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upload failed")
		if errors.Is(err, types.ErrUploadFailed) {
			api.ErrorResponse(w, r, http.StatusBadGateway, "Image upload failed")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Image upload failed")
		}
		return
	}

	l.InfoContext(ctx, "Images uploaded", slog.Int("count", len(urls)))
	span.SetStatus(codes.Ok, "Images uploaded")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"url":  urls[0],
		"urls": urls,
	})
}

func (h *HandlerImpl) uploadOne(ctx context.Context, fh *multipart.FileHeader, dst *string) error {
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.uploadService.UploadImage(ctx, fh.Filename, contentType, file)
	if err != nil {
		return err
	}
	*dst = url
	return nil
}
