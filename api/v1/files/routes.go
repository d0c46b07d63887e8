package files

import (
	"github.com/jacobsenj/canto-fal/internal/jwt"
	"github.com/jacobsenj/canto-fal/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterProtectedRoutes registers the storage routes on an authenticated group
func RegisterProtectedRoutes(r *gin.RouterGroup, h *Handler) {
	storage := r.Group("/storages/:storage")

	read := storage.Group("", middleware.ScopeRequiredMiddleware(jwt.ScopeFilesRead))
	read.GET("/tree", h.GetTree)
	read.GET("/folders/:id", h.GetFolder)
	read.GET("/folders/:id/folders", h.ListFolders)
	read.GET("/folders/:id/files", h.ListFiles)
	read.GET("/files/:id", h.GetFile)
	read.GET("/files/:id/content", h.StreamFile)
	read.GET("/files/:id/url", h.GetFileURL)

	write := storage.Group("", middleware.ScopeRequiredMiddleware(jwt.ScopeFilesWrite))
	write.POST("/folders/:id/folders", h.CreateFolder)
	write.POST("/folders/:id/files", h.UploadFile)
	write.DELETE("/folders/:id", h.DeleteFolder)
	write.PUT("/files/:id/name", h.RenameFile)
	write.PUT("/files/:id/metadata", h.ExportMetadata)
	write.DELETE("/files/:id", h.DeleteFile)
}
