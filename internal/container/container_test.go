package container

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/blur-culler/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     time.Second,
		ScanTimeout:        time.Second,
		ImageFetchTimeout:  time.Second,
		MaxRequestBodySize: 1 << 20,
		BlurThreshold:      100,
		ReviewDirName:      "_blurry",
		LibraryRoot:        t.TempDir(),
		ThumbnailSize:      128,
		RateLimitRPS:       10,
		RateLimitBurst:     20,
	}
}

func TestNewContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Handler())
	require.NotNil(t, c.Service())

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "images_scored")
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.BlurThreshold = -1

	_, err := NewContainer(cfg)
	assert.Error(t, err)
}
