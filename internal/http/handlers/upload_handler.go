package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"quickclean/internal/assets"
	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/validate"
)

const maxUpload = 10 << 20 // 10 MiB

type UploadHandler struct {
	Store *assets.S3Store
}

// POST /api/upload
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	if !h.Store.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Uploads are not configured"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, domain.Invalid("file", "file is required"))
	}
	if !validate.ImageName(fh.Filename) {
		applog.Security(c, "upload.reject", map[string]any{"filename": fh.Filename, "reason": "extension"})
		return writeError(c, domain.Invalid("file", "only jpg, png and webp images are allowed"))
	}
	if fh.Size > maxUpload {
		applog.Security(c, "upload.reject", map[string]any{"filename": fh.Filename, "reason": "size", "size": fh.Size})
		return writeError(c, domain.Invalid("file", "file must be at most 10 MiB"))
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return err
	}
	ct := http.DetectContentType(data)
	switch ct {
	case "image/jpeg", "image/png", "image/webp":
	default:
		applog.Security(c, "upload.reject", map[string]any{"filename": fh.Filename, "reason": "content", "type": ct})
		return writeError(c, domain.Invalid("file", "only jpg, png and webp images are allowed"))
	}

	url, key, err := h.Store.Put(c.UserContext(), fh.Filename, ct, data)
	if err != nil {
		return err
	}
	applog.Audit(c, "upload.put", map[string]any{"key": key, "size": len(data)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url, "key": key})
}
