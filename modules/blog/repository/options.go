// Package repository holds the settings shared by the blog repository
// implementations.
package repository

import "github.com/compozy/modhost/engine/data/query"

const DefaultPageSize = 20

type Options struct {
	PageSize int    `koanf:"page_size" json:"page_size"`
	Title    string `koanf:"title"     json:"title"`
}

func DefaultOptions() Options {
	return Options{PageSize: DefaultPageSize, Title: "Blog"}
}

// Paging fills in the configured page size when p has none. A negative
// size is left for the query builder to reject.
func (o Options) Paging(p query.Paging) query.Paging {
	if p.Size == 0 {
		p.Size = o.PageSize
	}
	return p
}
