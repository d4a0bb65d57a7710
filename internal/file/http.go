package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/adilkhan/custarchive/internal/auth"
	"github.com/adilkhan/custarchive/internal/blob"
	"github.com/adilkhan/custarchive/internal/customer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// customerGuard is the ownership decision for a customer, used before any
// customer-scoped file operation.
type customerGuard interface {
	IsOwnedByUser(ctx context.Context, id uuid.UUID, username string) (bool, error)
}

// RegisterRoutes mounts file operations under the provided router group. The
// ownership guard runs in the handler, before the service call; the service
// itself never re-checks ownership.
func RegisterRoutes(group *gin.RouterGroup, service *Service, customers customerGuard) {
	handler := &httpHandler{service: service, customers: customers}
	group.POST("/customers/:customerID/files", handler.uploadFile)
	group.GET("/customers/:customerID/files", handler.listFiles)
	group.GET("/files/:fileID/download", handler.downloadFile)
	group.PUT("/files/:fileID", handler.updateFile)
	group.DELETE("/files/:fileID", handler.deleteFile)
}

type httpHandler struct {
	service   *Service
	customers customerGuard
}

// guardCustomer resolves the principal and enforces customer ownership.
// Returning false means a response has already been written.
func (h *httpHandler) guardCustomer(c *gin.Context) (uuid.UUID, string, bool) {
	username, ok := auth.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, "", false
	}

	customerID, err := uuid.Parse(c.Param("customerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return uuid.Nil, "", false
	}

	owned, err := h.customers.IsOwnedByUser(c.Request.Context(), customerID, username)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return uuid.Nil, "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check ownership"})
		return uuid.Nil, "", false
	}
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return uuid.Nil, "", false
	}

	return customerID, username, true
}

// guardFile resolves the principal and enforces file ownership through the
// customer and user chain.
func (h *httpHandler) guardFile(c *gin.Context) (uuid.UUID, bool) {
	username, ok := auth.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}

	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return uuid.Nil, false
	}

	owned, err := h.service.IsOwnedByUser(c.Request.Context(), fileID, username)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return uuid.Nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check ownership"})
		return uuid.Nil, false
	}
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return uuid.Nil, false
	}

	return fileID, true
}

func (h *httpHandler) uploadFile(c *gin.Context) {
	customerID, _, ok := h.guardCustomer(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	payload, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer payload.Close()

	meta, err := h.service.Add(c.Request.Context(), customerID, payload, fileHeader.Filename, contentType(fileHeader))
	if err != nil {
		writeFileError(c, err, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, meta)
}

func (h *httpHandler) listFiles(c *gin.Context) {
	customerID, _, ok := h.guardCustomer(c)
	if !ok {
		return
	}

	files, err := h.service.ListForCustomer(c.Request.Context(), customerID)
	if err != nil {
		writeFileError(c, err, "failed to list files")
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	fileID, ok := h.guardFile(c)
	if !ok {
		return
	}

	meta, reader, err := h.service.Load(c.Request.Context(), fileID)
	if err != nil {
		writeFileError(c, err, "failed to download file")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", meta.FileType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.FileName))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
}

func (h *httpHandler) updateFile(c *gin.Context) {
	fileID, ok := h.guardFile(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	payload, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer payload.Close()

	meta, err := h.service.Update(c.Request.Context(), fileID, payload, fileHeader.Filename, contentType(fileHeader))
	if err != nil {
		writeFileError(c, err, "failed to update file")
		return
	}

	c.JSON(http.StatusOK, meta)
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	fileID, ok := h.guardFile(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), fileID); err != nil {
		writeFileError(c, err, "failed to delete file")
		return
	}

	c.Status(http.StatusNoContent)
}

func writeFileError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	case errors.Is(err, ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
	case errors.Is(err, blob.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
	case errors.Is(err, ErrMissingOnDisk):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "file content missing from storage"})
	case errors.Is(err, ErrStorage):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func contentType(fileHeader *multipart.FileHeader) string {
	if fileHeader == nil {
		return "application/octet-stream"
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
