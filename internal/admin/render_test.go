package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-admin/internal/models"
)

func TestBuildPager(t *testing.T) {
	for total := 2; total <= 6; total++ {
		for current := 1; current <= total; current++ {
			var visited []int
			pager := BuildPager(&models.Pagination{CurrentPage: current, TotalPages: total}, func(_ context.Context, p int) {
				visited = append(visited, p)
			})
			require.NotNil(t, pager)
			require.Len(t, pager.Links, total+2, "T page links plus previous and next")

			prev, next := pager.Links[0], pager.Links[len(pager.Links)-1]
			assert.Equal(t, current == 1, prev.Disabled)
			assert.Equal(t, current == total, next.Disabled)

			active := 0
			for i, l := range pager.Links[1 : total+1] {
				assert.Equal(t, i+1, l.Page)
				if l.Active {
					active++
					assert.Equal(t, current, l.Page)
				}
			}
			assert.Equal(t, 1, active)

			ctx := context.Background()
			prev.Run(ctx)
			next.Run(ctx)
			var want []int
			if current > 1 {
				want = append(want, current-1)
			}
			if current < total {
				want = append(want, current+1)
			}
			assert.Equal(t, want, visited)
		}
	}
}

func TestBuildPager_OutOfRangeCurrent(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		wantPrev []int
		wantNext []int
	}{
		{name: "above total", current: 5, wantPrev: []int{3}},
		{name: "below one", current: -2, wantNext: []int{1}},
		{name: "zero", current: 0, wantNext: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []int
			pager := BuildPager(&models.Pagination{CurrentPage: tt.current, TotalPages: 3}, func(_ context.Context, p int) {
				visited = append(visited, p)
			})
			require.NotNil(t, pager)
			for _, l := range pager.Links {
				assert.True(t, l.Page >= 1 && l.Page <= 3, "link %q targets page %d", l.Label, l.Page)
			}

			ctx := context.Background()
			pager.Links[0].Run(ctx)
			assert.Equal(t, tt.wantPrev, visited)

			visited = nil
			pager.Links[len(pager.Links)-1].Run(ctx)
			assert.Equal(t, tt.wantNext, visited)
		})
	}
}

func TestBuildPager_NothingToPage(t *testing.T) {
	noop := func(context.Context, int) {}
	assert.Nil(t, BuildPager(nil, noop))
	assert.Nil(t, BuildPager(&models.Pagination{CurrentPage: 1, TotalPages: 0}, noop))
	assert.Nil(t, BuildPager(&models.Pagination{CurrentPage: 1, TotalPages: 1}, noop))
}

func TestRender(t *testing.T) {
	records := []models.Record{
		record(`{
			"id": 1,
			"title": "Good Omens",
			"isbn": "111",
			"authors": [
				{"id": 1, "firstName": "Terry", "lastName": "Pratchett"},
				{"id": 2, "firstName": "Neil", "lastName": "Gaiman"}
			],
			"press": {"id": 3, "name": "Gollancz"},
			"tags": [{"id": 1, "name": "fantasy"}, {"id": 2, "name": "humour"}],
			"numCopiesAvailable": 4
		}`),
		record(`{"id": 2, "title": "Untitled", "authors": [{"id": 5, "firstName": "Homer"}]}`),
	}

	var bound []int64
	table := Render(records, Books, func(id int64) []Action {
		bound = append(bound, id)
		return []Action{{Label: "Edit", Kind: ActionEdit}}
	})

	assert.Equal(t, []string{"ID", "Title", "ISBN", "Authors", "Press", "Tags", "Available"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "Good Omens", "111", "Terry Pratchett, Neil Gaiman", "Gollancz", "fantasy, humour", "4"}, table.Rows[0].Cells)
	assert.Equal(t, []string{"2", "Untitled", "", "Homer", "", "", ""}, table.Rows[1].Cells)
	assert.Equal(t, []int64{1, 2}, bound)
	assert.Len(t, table.Rows[1].Actions, 1)
}

func TestRender_NoRecords(t *testing.T) {
	table := Render(nil, Tags, nil)
	assert.Equal(t, []string{"ID", "Name"}, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestAccessors(t *testing.T) {
	loan := record(`{
		"id": 4,
		"checkoutDate": "2024-03-01T10:15:00",
		"dueDate": "2024-03-15T10:15:00Z",
		"returnDate": null,
		"isOverdue": true
	}`)

	assert.Equal(t, "2024-03-01", Date("checkoutDate")(loan))
	assert.Equal(t, "2024-03-15 10:15", DateTime("dueDate")(loan))
	assert.Equal(t, "", Date("returnDate")(loan))
	assert.Equal(t, "yes", YesNo("isOverdue")(loan))
	assert.Equal(t, "", YesNo("missing")(loan))
	assert.Equal(t, "", Nested("press", "name")(loan))

	odd := record(`{"createdAt": "last tuesday"}`)
	assert.Equal(t, "last tuesday", DateTime("createdAt")(odd))

	assert.Equal(t, "Ada Lovelace", AuthorName(record(`{"firstName": "Ada", "lastName": "Lovelace"}`)))
	assert.Equal(t, "Ada", AuthorName(record(`{"firstName": "Ada", "lastName": ""}`)))
	assert.Equal(t, "3, 9", IDs("tags")(record(`{"tags": [{"id": 3}, {"name": "no id"}, {"id": 9}]}`)))
}

func TestNavbar(t *testing.T) {
	out := Navbar(nil)
	assert.Empty(t, out.Greeting)
	assert.Equal(t, []NavItem{{Label: "Login", Command: "login"}, {Label: "Register", Command: "register"}}, out.Account)
	require.Len(t, out.Pages, len(Catalog()))
	assert.Equal(t, "books", out.Pages[0].Command)

	in := Navbar(&models.User{ID: 1, Username: "alice"})
	assert.Equal(t, "Welcome, alice", in.Greeting)
	assert.Equal(t, []NavItem{{Label: "Logout", Command: "logout"}}, in.Account)
	assert.Equal(t, out.Pages, in.Pages)
}

func TestUserFromLogin(t *testing.T) {
	user, err := UserFromLogin(record(`{"user": {"id": 12, "username": "alice", "account": "alice01"}}`))
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: 12, Username: "alice", Account: "alice01"}, user)

	user, err = UserFromLogin(record(`{"user": {"id": 13, "account": "bob"}}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = UserFromLogin(record(`{}`))
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestCatalogLookup(t *testing.T) {
	d, ok := Lookup("loans")
	require.True(t, ok)
	assert.Same(t, Loans, d)

	_, ok = Lookup("shelves")
	assert.False(t, ok)

	spec, ok := Loans.Form("checkout")
	require.True(t, ok)
	assert.Equal(t, "/loans/checkout", spec.Path)
	assert.Equal(t, "/books/42", Books.ItemPath(42))
}
