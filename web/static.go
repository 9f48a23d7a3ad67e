package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"stagesite/config"
	"stagesite/storage"
	"stagesite/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

// Static serves the bundled assets. Anything under the uploads prefix comes from storage instead
func Static(c *gin.Context) {
	requested := c.Param("filepath")
	uploads := strings.TrimPrefix(config.UPLOAD_URL_PREFIX, "/static")
	if rest, ok := strings.CutPrefix(requested, uploads+"/"); ok {
		ServeUpload(c, rest)
		return
	}
	clean := path.Clean("/" + requested)
	full := filepath.Join(config.STATIC_DIR, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		NotFound(c)
		return
	}
	utils.SetCacheHeader(c, utils.CacheWeek)
	c.File(full)
}

func ServeUpload(c *gin.Context, requested string) {
	p, err := storage.Clean(requested)
	if err != nil {
		NotFound(c)
		return
	}
	store := storage.Default()
	if !store.Exists(p) {
		NotFound(c)
		return
	}
	utils.SetCacheHeader(c, utils.CacheWeek)
	store.Serve(p, c.Request, c.Writer)
}

func Robots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\nDisallow: /api/\n")
}
