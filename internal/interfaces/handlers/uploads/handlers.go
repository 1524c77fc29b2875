package uploads

import (
	uploadsvc "mazal-backend/internal/application/uploads"
	"mazal-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadDiamondImage POST /api/v1/uploads/diamond-image
func (h *Handlers) UploadDiamondImage(c *fiber.Ctx) error {
	return h.signedURL(c, uploadsvc.BucketDiamondImages)
}

// UploadCertificate POST /api/v1/uploads/certificate
func (h *Handlers) UploadCertificate(c *fiber.Ctx) error {
	return h.signedURL(c, uploadsvc.BucketCertificates)
}

func (h *Handlers) signedURL(c *fiber.Ctx, bucket string) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", 400, nil)
	}

	res, err := h.Service.GetSignedUploadURL(c.Context(), bucket, req.FileName)
	if err != nil {
		log.Error().Err(err).Str("bucket", bucket).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", 500, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
