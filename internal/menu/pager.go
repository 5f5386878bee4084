package menu

import "context"

// Pager tracks the current page of a paginated menu in one int slot.
type Pager struct {
	c    *Context
	page *Ref[int]
}

// Paginate declares the page slot, starting on page 0.
func Paginate(c *Context) *Pager {
	return &Pager{c: c, page: State(c, Int, 0)}
}

// Page returns the current page.
func (p *Pager) Page() int {
	return p.page.Get()
}

// Clamp bounds the current page to [0, pages) for display. A page slot left
// past the end after the item count shrank reads as the last page.
func (p *Pager) Clamp(pages int) int {
	page := p.Page()
	if page >= pages {
		page = pages - 1
	}
	return max(page, 0)
}

// Window returns the half-open item range of the current page.
func (p *Pager) Window(items, perPage int) (start, end int) {
	if perPage <= 0 {
		return 0, items
	}
	page := p.Clamp(Pages(items, perPage))
	start = page * perPage
	end = min(start+perPage, items)
	return start, end
}

// Controls declares a row of previous and next buttons for a menu of the
// given number of pages.
func (p *Pager) Controls(pages int) {
	page := p.Clamp(pages)
	p.c.Row(func() {
		p.c.Button("page.prev", "◀", func(context.Context, *Interaction) error {
			p.page.Set(max(page-1, 0))
			return nil
		}, Disabled(page <= 0))
		p.c.Button("page.next", "▶", func(context.Context, *Interaction) error {
			p.page.Set(min(page+1, max(pages-1, 0)))
			return nil
		}, Disabled(page >= pages-1))
	})
}

// Pages returns how many pages items fill at perPage each.
func Pages(items, perPage int) int {
	if perPage <= 0 || items <= 0 {
		return 1
	}
	return (items + perPage - 1) / perPage
}
