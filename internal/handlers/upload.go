package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coffee-platform/internal/storage"
)

// 5MB cap on avatar/cover uploads.
const maxUploadBytes = 5 * 1024 * 1024

type UploadHandler struct {
	Uploader storage.Uploader
}

func NewUploadHandler(uploader storage.Uploader) *UploadHandler {
	return &UploadHandler{Uploader: uploader}
}

// Upload accepts one multipart image and responds with its durable public
// URL. The client then saves that URL through the profile update.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large (max 5MB)"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type (image required)"})
		return
	}

	url, err := h.Uploader.UploadImage(file, contentType)
	if err != nil {
		log.Println("upload: failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
