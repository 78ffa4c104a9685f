package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hailan-new/contractsplit/internal/classify"
	"github.com/hailan-new/contractsplit/internal/config"
	"github.com/hailan-new/contractsplit/internal/pipeline"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:          testAPIKey,
		WorkerCount:     2,
		MaxQueueSize:    16,
		MaxUploadBytes:  1 << 20,
		DefaultMaxSize:  2000,
		DefaultOverlap:  200,
		DefaultStrategy: "finest_granularity",
		DedupThreshold:  0.7,
		JobTTL:          time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, classify.NewRuleBased(classify.DefaultConfig()), log)

	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)
	t.Cleanup(func() {
		cancel()
		orch.Stop()
	})

	return NewServer(orch, nil, log, cfg)
}

func multipartUpload(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	for k, v := range extra {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func authedRequest(method, target, contentType string, body *bytes.Buffer) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/split", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/split", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for bad key", rec.Code)
	}
}

func TestSplitEndToEnd(t *testing.T) {
	s := newTestServer(t)

	content := "第一章 总则\n双方为明确权利义务，订立本合同。\n第一条 交付\n甲方应当按期交付货物。\n"
	body, contentType := multipartUpload(t, "file", "contract.txt", content, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/split", contentType, body))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}

	var submitResp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if submitResp.JobID == "" {
		t.Fatal("missing job_id in response")
	}

	// Poll until the worker finishes.
	deadline := time.Now().Add(3 * time.Second)
	var status pipeline.JobSnapshot
	for {
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/jobs/"+submitResp.JobID, "", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d: %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Status == pipeline.StatusCompleted || status.Status == pipeline.StatusFailed || status.Status == pipeline.StatusPartial {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, last status %q", status.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status.Status != pipeline.StatusCompleted {
		t.Fatalf("status = %q, errors = %v", status.Status, status.Progress.Errors)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/jobs/"+submitResp.JobID+"/chunks", "", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("chunks endpoint = %d: %s", rec.Code, rec.Body.String())
	}
	var chunksResp struct {
		Chunks []string `json:"chunks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &chunksResp); err != nil {
		t.Fatalf("decode chunks: %v", err)
	}
	if len(chunksResp.Chunks) == 0 {
		t.Fatal("expected chunks in response")
	}
}

func TestSplitRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartUpload(t, "file", "archive.zip", "data", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/split", contentType, body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSplitRejectsBadStrategy(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartUpload(t, "file", "contract.txt", "第一章 总则\n正文。\n", map[string]string{
		"strategy": "bogus",
	})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/split", contentType, body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestJobNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/jobs/does-not-exist", "", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestClassifierStatsUnavailableWithoutRemote(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/stats/classifier", "", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 without remote classifier", rec.Code)
	}
}
