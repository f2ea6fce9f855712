package photo

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/abduss/photomap/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const formField = "image"

// multipartOverhead covers boundaries and part headers on top of the file.
const multipartOverhead = 64 << 10

const (
	msgNoFile          = "No image file provided"
	msgNoSelectedFile  = "No selected file"
	msgInvalidFormat   = "Invalid image format. Allowed formats: png, jpg, jpeg, gif"
	msgTooLarge        = "File too large"
	msgInvalidImage    = "Uploaded file is not a valid image. Please ensure it is a supported format (png, jpg, jpeg, gif) and not corrupted."
	msgStoreFailed     = "Could not save uploaded file."
	msgPersistFailed   = "Could not save image metadata to database."
	msgUploadFailed    = "Could not process uploaded file."
	msgUploadedWithGPS = "Image uploaded and processed successfully."
	msgUploadedNoGPS   = "Image processed successfully, but no GPS data was found."
)

// RegisterRoutes mounts image operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/upload_image", handler.uploadImage)
	group.GET("/images", handler.listImages)
	group.GET("/images/:imageID", handler.getImage)
	group.GET("/images/:imageID/file", handler.downloadImage)
}

type httpHandler struct {
	service *Service
}

type uploadResponse struct {
	Message     string   `json:"message"`
	ImageID     int64    `json:"imageId"`
	Filename    string   `json:"filename"`
	StorageName string   `json:"storageName"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     *string  `json:"address"`
	GPSPresent  bool     `json:"gpsPresent"`
}

func (h *httpHandler) uploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxFileSize()+multipartOverhead)

	fileHeader, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgTooLarge})
			return
		}
		// a part sent with an empty filename is parsed as a plain value
		if form := c.Request.MultipartForm; form != nil && len(form.Value[formField]) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoSelectedFile})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
		return
	}

	result, err := h.service.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFilename):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoSelectedFile})
		case errors.Is(err, ErrInvalidExtension):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidFormat})
		case errors.Is(err, ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgTooLarge})
		case errors.Is(err, ErrInvalidImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidImage})
		case errors.Is(err, ErrStoreFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgStoreFailed})
		case errors.Is(err, ErrPersistFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgPersistFailed})
		default:
			logger.FromContext(c).Error("upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgUploadFailed})
		}
		return
	}

	message := msgUploadedNoGPS
	if result.GPSPresent {
		message = msgUploadedWithGPS
	}
	c.JSON(http.StatusCreated, uploadResponse{
		Message:     message,
		ImageID:     result.Record.ID,
		Filename:    result.Record.OriginalFilename,
		StorageName: result.Record.StorageFilename,
		Latitude:    result.Record.Latitude,
		Longitude:   result.Record.Longitude,
		Address:     result.Record.Address,
		GPSPresent:  result.GPSPresent,
	})
}

func (h *httpHandler) listImages(c *gin.Context) {
	located := false
	if raw := c.Query("located"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid located filter"})
			return
		}
		located = v
	}

	list, err := h.service.List(c.Request.Context(), located)
	if err != nil {
		logger.FromContext(c).Error("list images", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list images"})
		return
	}
	if list == nil {
		list = []Record{}
	}

	c.JSON(http.StatusOK, gin.H{"images": list})
}

func (h *httpHandler) getImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		logger.FromContext(c).Error("get image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get image"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *httpHandler) downloadImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	rec, reader, err := h.service.Open(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		logger.FromContext(c).Error("open image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}
	defer reader.Close()

	contentType := rec.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", rec.OriginalFilename))
	if rec.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(rec.SizeBytes, 10))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.FromContext(c).Warn("stream image", zap.Error(err))
	}
}

func imageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("imageID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return 0, false
	}
	return id, true
}
