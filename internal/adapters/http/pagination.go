package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses. Every
// link keeps the request's filters and only replaces offset and limit.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	filters := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(filters)
	c.Request().URI().QueryArgs().CopyTo(filters)
	filters.Del("offset")
	filters.Del("limit")

	link := func(offset int, rel string) string {
		args := fasthttp.AcquireArgs()
		defer fasthttp.ReleaseArgs(args)
		filters.CopyTo(args)
		args.SetUint("offset", offset)
		args.SetUint("limit", p.Limit)
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, c.Path(), args.QueryString(), rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set("Link", strings.Join(links, ", "))
}
