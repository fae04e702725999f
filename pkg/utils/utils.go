// Package utils 提供分页等通用工具
package utils

// DefaultPageSize 默认分页大小
const DefaultPageSize = 20

// MaxPageSize 最大分页大小
const MaxPageSize = 100

// Pagination 分页参数
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination 规范化分页参数：page 从 1 开始，pageSize 限制在 [1, MaxPageSize]
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset 偏移量
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 条数
func (p Pagination) Limit() int {
	return p.PageSize
}

// Deref 返回指针指向的值，nil 时返回零值
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Ptr 返回值的指针
func Ptr[T any](v T) *T {
	return &v
}
