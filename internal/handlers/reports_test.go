package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"campuscafe/internal/cache"
)

func TestParseClearCacheBodyObject(t *testing.T) {
	email, ok := parseClearCacheBody([]byte(`{"vendorEmail": "cafe@campus.edu"}`))
	if !ok || email != "cafe@campus.edu" {
		t.Fatalf("expected cafe@campus.edu, got %q ok=%v", email, ok)
	}
}

func TestParseClearCacheBodyBareString(t *testing.T) {
	email, ok := parseClearCacheBody([]byte(`"cafe@campus.edu"`))
	if !ok || email != "cafe@campus.edu" {
		t.Fatalf("expected bare string form to parse, got %q ok=%v", email, ok)
	}
}

func TestParseClearCacheBodyTrimsWhitespace(t *testing.T) {
	email, ok := parseClearCacheBody([]byte(`{"vendorEmail": "  cafe@campus.edu  "}`))
	if !ok || email != "cafe@campus.edu" {
		t.Fatalf("expected trimmed email, got %q ok=%v", email, ok)
	}
}

func TestParseClearCacheBodyRejectsBadInput(t *testing.T) {
	bad := [][]byte{
		[]byte(``),
		[]byte(`{}`),
		[]byte(`{"vendorEmail": ""}`),
		[]byte(`42`),
		[]byte(`not json`),
	}
	for _, body := range bad {
		if email, ok := parseClearCacheBody(body); ok {
			t.Fatalf("expected %q to be rejected, got %q", body, email)
		}
	}
}

func testReportCache() *cache.ReportCache {
	// Redis clients connect lazily; Invalidate just logs when the server is
	// unreachable, so handler tests need no live instance.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	return cache.NewReportCache(rdb, 0, zap.NewNop())
}

func TestClearReportCacheHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("POST", "/api/reports/clear-cache",
		strings.NewReader(`{"vendorEmail": "cafe@campus.edu"}`))

	ClearReportCache(testReportCache())(c)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), `"success":true`) {
		t.Fatalf("expected success response, got %s", recorder.Body.String())
	}
}

func TestClearReportCacheHandlerRejectsMissingVendor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("POST", "/api/reports/clear-cache",
		strings.NewReader(`{}`))

	ClearReportCache(testReportCache())(c)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
}
