package respond

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPageParamsClamps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{query: "", wantPage: 1, wantLimit: 10},
		{query: "?page=3&limit=20", wantPage: 3, wantLimit: 20},
		{query: "?page=0&limit=500", wantPage: 1, wantLimit: 50},
		{query: "?page=x&limit=-4", wantPage: 1, wantLimit: 1},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/items"+tt.query, nil)
		page, limit := PageParams(c, 10, 50)
		if page != tt.wantPage || limit != tt.wantLimit {
			t.Fatalf("%q: got page=%d limit=%d, want %d/%d", tt.query, page, limit, tt.wantPage, tt.wantLimit)
		}
	}
}

func TestNewPaginationRoundsUp(t *testing.T) {
	p := NewPagination(1, 10, 21)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPages)
	}
	if NewPagination(1, 10, 0).TotalPages != 0 {
		t.Fatalf("expected 0 pages for empty list")
	}
}
