package admin

import (
	"context"
	"strconv"

	"library-admin/internal/models"
)

// BuildPager builds the pagination widget for an envelope.
// It returns nil when there is nothing to page through (zero or one page).
func BuildPager(p *models.Pagination, goTo func(ctx context.Context, page int)) *Pager {
	if p == nil || p.TotalPages <= 1 {
		return nil
	}

	current, total := p.CurrentPage, p.TotalPages
	link := func(label string, page int, disabled bool) PageLink {
		l := PageLink{Label: label, Page: page, Disabled: disabled}
		if disabled {
			l.Run = func(context.Context) {}
		} else {
			l.Run = func(ctx context.Context) { goTo(ctx, page) }
		}
		return l
	}

	pager := &Pager{
		Current: current,
		Total:   total,
		Links:   make([]PageLink, 0, total+2),
	}
	// Targets stay within 1..total even when the backend reports a
	// current page outside that range
	pager.Links = append(pager.Links, link("«", clampPage(current-1, total), current <= 1))
	for i := 1; i <= total; i++ {
		l := link(strconv.Itoa(i), i, false)
		l.Active = i == current
		pager.Links = append(pager.Links, l)
	}
	pager.Links = append(pager.Links, link("»", clampPage(current+1, total), current >= total))
	return pager
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}
