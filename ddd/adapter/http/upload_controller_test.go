package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterhttp "separation-service/ddd/adapter/http"
	"separation-service/ddd/application/app"
	"separation-service/ddd/infrastructure/poller"
	"separation-service/ddd/infrastructure/queue"
	"separation-service/ddd/infrastructure/upload"
	"separation-service/pkg/config"
)

type serverFixture struct {
	engine   *gin.Engine
	cfg      *config.Config
	jobQueue queue.JobQueue
	guard    *queue.KeyGuard
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Upload.Dir = t.TempDir()
	cfg.Separation.OutputDir = t.TempDir()

	jobQueue := queue.NewMemoryJobQueue(4)
	t.Cleanup(func() { jobQueue.Close() })
	guard := queue.NewKeyGuard()

	separationApp := app.NewSeparationApp(
		upload.NewChunkAssembler(cfg.Upload.Dir),
		jobQueue,
		guard,
		poller.NewArtifactPoller(3, 10*time.Millisecond),
		cfg,
	)

	engine := gin.New()
	router := adapterhttp.NewRouter(separationApp)
	router.SetupRoutes(engine)

	return &serverFixture{engine: engine, cfg: cfg, jobQueue: jobQueue, guard: guard}
}

func (f *serverFixture) postChunk(t *testing.T, fileName, chunkID, totalChunks, payload string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("chunkId", chunkID))
	require.NoError(t, writer.WriteField("totalChunks", totalChunks))
	part, err := writer.CreateFormFile("chunk", "blob")
	require.NoError(t, err)
	_, err = part.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/uploads/chunk", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if fileName != "" {
		req.Header.Set("File-Name", fileName)
	}

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestUploadChunk_PartialChunkAccepted(t *testing.T) {
	f := newServerFixture(t)

	rec := f.postChunk(t, "song.mp3", "1", "2", "first-half")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, 200, resp.Code)
	assert.Contains(t, string(resp.Data), "Chunk received successfully")
	assert.Contains(t, string(resp.Data), `"processing":false`)

	// 还没有任务入队
	assert.Equal(t, 0, f.jobQueue.Size())
}

func TestUploadChunk_FinalChunkEnqueuesJob(t *testing.T) {
	f := newServerFixture(t)

	f.postChunk(t, "song.mp3", "1", "2", "first-")
	rec := f.postChunk(t, "song.mp3", "2", "2", "second")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Contains(t, string(resp.Data), "File uploaded successfully")
	assert.Contains(t, string(resp.Data), `"processing":true`)

	require.Equal(t, 1, f.jobQueue.Size())
	job, err := f.jobQueue.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "song", job.JobKey())

	// 分片已拼接落盘
	got, err := os.ReadFile(filepath.Join(f.cfg.Upload.Dir, "song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "first-second", string(got))
}

func TestUploadChunk_DuplicateFinalChunkRejectedWhileInFlight(t *testing.T) {
	f := newServerFixture(t)

	rec := f.postChunk(t, "song.mp3", "1", "1", "whole")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, 1, f.jobQueue.Size())

	// 管线在途期间重复投递末分片
	rec = f.postChunk(t, "song.mp3", "1", "1", "whole")
	resp := decodeResponse(t, rec)
	assert.Equal(t, 20010, resp.Code)
	assert.Equal(t, 1, f.jobQueue.Size(), "duplicate delivery must not enqueue a second job")

	// 上传文件未被重复追加污染
	got, err := os.ReadFile(filepath.Join(f.cfg.Upload.Dir, "song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "whole", string(got))
}

func TestUploadChunk_MissingFileNameHeader(t *testing.T) {
	f := newServerFixture(t)

	rec := f.postChunk(t, "", "1", "1", "data")
	resp := decodeResponse(t, rec)
	assert.Equal(t, 20001, resp.Code)
}

func TestUploadChunk_PathTraversalRejected(t *testing.T) {
	f := newServerFixture(t)

	for _, name := range []string{"../etc/passwd", "a/b.mp3", `a\b.mp3`, "..mp3.."} {
		rec := f.postChunk(t, name, "1", "1", "data")
		resp := decodeResponse(t, rec)
		assert.Equal(t, 20002, resp.Code, "file name %q must be rejected", name)
	}
}

func TestUploadChunk_ChunkIndexOutOfRange(t *testing.T) {
	f := newServerFixture(t)

	rec := f.postChunk(t, "song.mp3", "3", "2", "data")
	resp := decodeResponse(t, rec)
	assert.Equal(t, 20005, resp.Code)
}

func TestUploadChunk_MissingMultipartFile(t *testing.T) {
	f := newServerFixture(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("chunkId", "1"))
	require.NoError(t, writer.WriteField("totalChunks", "1"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/uploads/chunk", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("File-Name", "song.mp3")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	resp := decodeResponse(t, rec)
	assert.Equal(t, 20003, resp.Code)
}

func TestUploadChunk_QueueFull(t *testing.T) {
	f := newServerFixture(t)

	// 占满容量为4的队列
	for i, name := range []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3"} {
		rec := f.postChunk(t, name, "1", "1", "data")
		resp := decodeResponse(t, rec)
		require.Equal(t, 200, resp.Code, "job %d should enqueue", i)
	}

	rec := f.postChunk(t, "e.mp3", "1", "1", "data")
	resp := decodeResponse(t, rec)
	assert.Equal(t, 20011, resp.Code)
	// 入队失败时守卫回滚，重试可以成功
	assert.False(t, f.guard.InFlight("e"))
}

func TestHealthEndpoint(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "separation-service")
}
