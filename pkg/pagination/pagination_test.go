package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFromValues(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		want        Params
		wantOffset  int
	}{
		{"defaults", "", "", Params{Page: 1, Limit: 20}, 0},
		{"explicit", "3", "10", Params{Page: 3, Limit: 10}, 20},
		{"garbage", "abc", "1.5", Params{Page: 1, Limit: 20}, 0},
		{"non-positive", "0", "-4", Params{Page: 1, Limit: 20}, 0},
		{"clamped", "2", "5000", Params{Page: 2, Limit: MaxLimit}, MaxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromValues(tt.page, tt.limit)
			if got != tt.want {
				t.Errorf("FromValues(%q, %q) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
			if got.Offset() != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/orders?page=4&limit=25", nil)

	if got := Parse(c); got != (Params{Page: 4, Limit: 25}) {
		t.Errorf("Parse() = %+v, want page 4 limit 25", got)
	}
}
