package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govee-lab/govee-bridge/internal/api/middleware"
	"github.com/govee-lab/govee-bridge/internal/cloudapi"
	"github.com/govee-lab/govee-bridge/internal/control"
	"github.com/govee-lab/govee-bridge/internal/scenes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeSender 捕获透传下发的包
type fakeSender struct {
	topic  string
	frames [][]byte
	calls  int
	err    error
}

func (f *fakeSender) PublishFrames(_ context.Context, topic string, frames [][]byte) error {
	f.calls++
	f.topic = topic
	f.frames = frames
	return f.err
}

type stubFetcher struct{}

func (stubFetcher) GetDynamicScenes(context.Context, string, string) ([]cloudapi.SceneOption, error) {
	return nil, nil
}
func (stubFetcher) GetDIYScenes(context.Context, string, string) ([]cloudapi.SceneOption, error) {
	return nil, nil
}

func newTestLibrary(t *testing.T) *scenes.Library {
	t.Helper()

	param := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03, 0x50, 0x05})
	catalogYAML := "effects:\n  H6160:\n    - name: Sunset\n      sceneCode: 10191\n      scenceParam: " +
		param + "\n      speedIndex: 3\n"
	path := filepath.Join(t.TempDir(), "effects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))
	catalog, err := scenes.LoadEffectCatalog(path)
	require.NoError(t, err)

	return scenes.NewLibrary(stubFetcher{}, scenes.NewMemoryCache(), time.Minute, catalog, nil, nil)
}

func newBLERouter(t *testing.T, sender *fakeSender) *gin.Engine {
	t.Helper()
	svc := control.NewService(sender, newTestLibrary(t), nil, nil)

	r := gin.New()
	RegisterRoutes(r, nil, NewControlHandler(svc, nil), middleware.AuthConfig{}, testLogger())
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSetDIYStyleByName(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/diy-style", `{"topic":"GD/abc","style":"Marquee","speed":60}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, sender.frames, 1)
	frame := sender.frames[0]
	assert.Equal(t, byte(0xA1), frame[0])
	assert.Equal(t, byte(0x03), frame[3])
	assert.Equal(t, byte(60), frame[5])
	assert.Equal(t, "GD/abc", sender.topic)
}

func TestSetDIYStyleByNumber(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/diy-style", `{"topic":"GD/abc","style":"1","speed":50}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, byte(0x01), sender.frames[0][3])
}

func TestSetDIYStyleDefaultSpeed(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/diy-style", `{"topic":"GD/abc","style":"Fade"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// speed缺省为50
	assert.Equal(t, byte(50), sender.frames[0][5])
}

func TestSetDIYStyleUnknownName(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/diy-style", `{"topic":"GD/abc","style":"Rainbow"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, sender.calls)
}

func TestSetDIYStyleMissingTopic(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/diy-style", `{"style":"Fade"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetMusicModeRequiresEnabled(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	// enabled字段缺失视为非法请求，避免bool零值歧义
	w := postJSON(r, "/api/ble/music-mode", `{"topic":"GD/abc","sensitivity":50}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/api/ble/music-mode", `{"topic":"GD/abc","enabled":false,"sensitivity":50}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, byte(0x00), sender.frames[0][3])
}

func TestSceneActivate(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/scene-activate", `{"topic":"GD/abc","sceneCode":10191}`)
	require.Equal(t, http.StatusOK, w.Code)

	frame := sender.frames[0]
	assert.Equal(t, []byte{0x33, 0x05, 0x04, 0xCF, 0x27}, frame[:5])
}

func TestSetEffectSpeedUnknownEffect(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/effect-speed", `{"topic":"GD/abc","sku":"H6160","effect":"Nope","speed":50}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetEffectSpeedSequence(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := postJSON(r, "/api/ble/effect-speed", `{"topic":"GD/abc","sku":"H6160","effect":"Sunset","speed":90}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 多包序列 + 激活包一次性下发
	require.Equal(t, 1, sender.calls)
	require.Len(t, sender.frames, 3)
	assert.Equal(t, byte(90), sender.frames[0][4+3])
}

func TestControlDisabledChannel(t *testing.T) {
	r := gin.New()
	RegisterRoutes(r, nil, NewControlHandler(nil, nil), middleware.AuthConfig{}, testLogger())

	w := postJSON(r, "/api/ble/scene-speed", `{"topic":"GD/abc","speed":30}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListStyles(t *testing.T) {
	sender := &fakeSender{}
	r := newBLERouter(t, sender)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ble/styles", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Marquee")
}
