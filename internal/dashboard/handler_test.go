package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docaudit-backend/internal/analyses"
	"docaudit-backend/internal/documents"
	"docaudit-backend/internal/reports"
)

func TestDashboardStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	docRepo := documents.NewMemoryRepo()
	jobRepo := analyses.NewMemoryRepo()
	reportRepo := reports.NewMemoryRepo()

	for _, id := range []string{"doc-1", "doc-2"} {
		if err := docRepo.Create(ctx, documents.Document{ID: id, UserID: "user-1", FileName: id + ".txt", CreatedAt: now}); err != nil {
			t.Fatalf("create document: %v", err)
		}
	}
	if err := docRepo.Create(ctx, documents.Document{ID: "doc-3", UserID: "user-2", CreatedAt: now}); err != nil {
		t.Fatalf("create document: %v", err)
	}

	jobs := []analyses.Job{
		{ID: "job-1", UserID: "user-1", Status: analyses.StatusCompleted, CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "job-2", UserID: "user-1", Status: analyses.StatusCompleted, CreatedAt: now},
		{ID: "job-3", UserID: "user-1", Status: analyses.StatusFailed, CreatedAt: now},
		{ID: "job-4", UserID: "user-2", Status: analyses.StatusCompleted, CreatedAt: now},
	}
	for _, job := range jobs {
		if err := jobRepo.Create(ctx, job); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}
	if err := reportRepo.Create(ctx, reports.Report{ID: "rep-1", UserID: "user-1", AnalysisJobID: "job-2", GeneratedAt: now}); err != nil {
		t.Fatalf("create report: %v", err)
	}

	svc := NewService(docRepo, jobRepo, reportRepo)
	svc.Now = func() time.Time { return now }

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var stats Stats
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Stats{TotalDocuments: 2, TotalAnalyses: 2, TotalReports: 1, ThisMonthAnalyses: 1}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}
