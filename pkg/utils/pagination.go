package utils

import (
	"fmt"
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"count"`
}

const (
	defaultSize = 20
	maxSize     = 100
)

func (p *Pagination) SetSize(querySize string) error {
	if querySize == "" {
		p.Size = defaultSize
		return nil
	}
	size, err := strconv.Atoi(querySize)
	if err != nil {
		return fmt.Errorf("invalid size: %w", err)
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	p.Size = size
	return nil
}

func (p *Pagination) SetPage(queryPage string) error {
	if queryPage == "" {
		p.Page = 1
		return nil
	}
	page, err := strconv.Atoi(queryPage)
	if err != nil {
		return fmt.Errorf("invalid page: %w", err)
	}
	if page < 1 {
		page = 1
	}
	p.Page = page
	return nil
}

func (p *Pagination) GetSize() int {
	return p.Size
}

func (p *Pagination) GetPage() int {
	return p.Page
}

func (p *Pagination) GetOffset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

func (p *Pagination) GetLimit() int {
	return p.Size
}

// GetPaginationFromCtx reads page and limit (or size) from the query string.
func GetPaginationFromCtx(ctx echo.Context) (*Pagination, error) {
	p := &Pagination{}

	size := ctx.QueryParam("limit")
	if size == "" {
		size = ctx.QueryParam("size")
	}
	if err := p.SetSize(size); err != nil {
		return nil, err
	}
	if err := p.SetPage(ctx.QueryParam("page")); err != nil {
		return nil, err
	}
	return p, nil
}

func GetTotalPages(totalCount int, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	d := float64(totalCount) / float64(pageSize)
	return int(math.Ceil(d))
}

func GetHasMore(currPage, totalCount, pageSize int) bool {
	return currPage*pageSize < totalCount
}
