package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/courseward-api/internal/middleware"
	"github.com/yourusername/courseward-api/internal/service"
)

// 25 МБ достаточно для учебных PDF, крупнее — уже сканы книг
const maxUploadSize = 25 << 20

// FileHandler обрабатывает запросы, связанные с материалами курса
type FileHandler struct {
	fileService *service.FileService
}

// NewFileHandler создает новый обработчик файлов
func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadFile принимает PDF, сохраняет его и индексирует содержимое
func (h *FileHandler) UploadFile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 25 MB limit"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	file, err := h.fileService.Upload(c.Request.Context(), courseID, userID,
		fileHeader.Filename, contentType, data)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// ListFiles возвращает материалы курса
func (h *FileHandler) ListFiles(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	courseID := c.MustGet("courseID").(uint)

	files, err := h.fileService.List(courseID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// DownloadFile отдает исходный PDF материала
func (h *FileHandler) DownloadFile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	fileID := c.MustGet("fileID").(uint)

	file, data, err := h.fileService.Download(c.Request.Context(), fileID, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	c.Data(http.StatusOK, "application/pdf", data)
}

// DeleteFile удаляет материал вместе с его векторами
func (h *FileHandler) DeleteFile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	fileID := c.MustGet("fileID").(uint)

	if err := h.fileService.Delete(c.Request.Context(), fileID, userID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
