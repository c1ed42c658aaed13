package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-lab-api/pkg/response"
)

type avatarOpener interface {
	OpenAvatar(token string) (*os.File, error)
}

// MediaHandler serves uploaded files behind signed links.
type MediaHandler struct {
	media avatarOpener
}

// NewMediaHandler constructs MediaHandler.
func NewMediaHandler(media avatarOpener) *MediaHandler {
	return &MediaHandler{media: media}
}

// Avatar streams the avatar granted by the token in the path.
func (h *MediaHandler) Avatar(c *gin.Context) {
	file, err := h.media.OpenAvatar(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Header("X-Content-Type-Options", "nosniff")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
}
