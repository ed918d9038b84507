package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaginationFromCtx(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantSize   int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", query: "", wantPage: 1, wantSize: 20, wantOffset: 0},
		{name: "limit param", query: "?page=3&limit=10", wantPage: 3, wantSize: 10, wantOffset: 20},
		{name: "size param", query: "?page=2&size=5", wantPage: 2, wantSize: 5, wantOffset: 5},
		{name: "size capped", query: "?limit=1000", wantPage: 1, wantSize: 100, wantOffset: 0},
		{name: "page floor", query: "?page=-4", wantPage: 1, wantSize: 20, wantOffset: 0},
		{name: "bad page", query: "?page=abc", wantErr: true},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/videos"+tt.query, nil)
			c := e.NewContext(req, httptest.NewRecorder())

			p, err := GetPaginationFromCtx(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, p.GetPage())
			assert.Equal(t, tt.wantSize, p.GetSize())
			assert.Equal(t, tt.wantOffset, p.GetOffset())
		})
	}
}

func TestTotalPagesAndHasMore(t *testing.T) {
	assert.Equal(t, 3, GetTotalPages(21, 10))
	assert.Equal(t, 0, GetTotalPages(0, 10))
	assert.Equal(t, 0, GetTotalPages(5, 0))
	assert.True(t, GetHasMore(1, 21, 10))
	assert.False(t, GetHasMore(3, 21, 10))
}
