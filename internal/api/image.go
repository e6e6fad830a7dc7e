package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/query"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// ImageFormField is the multipart field carrying the query image.
const ImageFormField = "image"

// ImageNormalizer prepares an uploaded image before it is submitted.
type ImageNormalizer interface {
	Normalize(img *types.ImageQuery) error
}

// SearchImage handles a food-photo submission. The extension is checked
// before the file is read, and a rejected upload is never forwarded.
func (h *SearchHandler) SearchImage(c *gin.Context) {
	header, err := c.FormFile(ImageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			middleware.RespondError(c, h.log, apperr.Validation(query.MsgImageEmpty))
			return
		}
		middleware.RespondError(c, h.log, apperr.Wrap(apperr.KindValidation, "invalid upload", err))
		return
	}
	if _, ok := query.MimeTypeForFilename(header.Filename); !ok {
		middleware.RespondError(c, h.log, apperr.Validation(query.MsgImageType))
		return
	}

	file, err := header.Open()
	if err != nil {
		middleware.RespondError(c, h.log, apperr.Internal(err).WithOp("api.SearchImage"))
		return
	}
	defer file.Close()

	// One byte over the limit is enough for the builder to reject it.
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		middleware.RespondError(c, h.log, apperr.Wrap(apperr.KindValidation, "invalid upload", err))
		return
	}

	req, err := h.builder.BuildImage(header.Filename, data)
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	if h.images != nil {
		if err := h.images.Normalize(req.Image); err != nil {
			middleware.RespondError(c, h.log, err)
			return
		}
	}
	h.submit(c, req)
}
