package admin

import "net/http"

var (
	Books = &Descriptor{
		Name:  "books",
		Noun:  "book",
		Title: "Books",
		Path:  "/books",
		Columns: []Column{
			{Label: "ID", Accessor: Value("id")},
			{Label: "Title", Accessor: Value("title")},
			{Label: "ISBN", Accessor: Value("isbn")},
			{Label: "Authors", Accessor: AuthorNames("authors")},
			{Label: "Press", Accessor: Nested("press", "name")},
			{Label: "Tags", Accessor: Names("tags")},
			{Label: "Available", Accessor: Value("numCopiesAvailable")},
		},
		DetailColumns: []Column{
			{Label: "ID", Accessor: Value("id")},
			{Label: "Title", Accessor: Value("title")},
			{Label: "ISBN", Accessor: Value("isbn")},
			{Label: "Authors", Accessor: AuthorNames("authors")},
			{Label: "Press", Accessor: Nested("press", "name")},
			{Label: "Tags", Accessor: Names("tags")},
			{Label: "Total copies", Accessor: Value("numCopiesTotal")},
			{Label: "Available", Accessor: Value("numCopiesAvailable")},
			{Label: "Created", Accessor: DateTime("createdAt")},
			{Label: "Updated", Accessor: DateTime("updatedAt")},
		},
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true},
			{Name: "isbn", Label: "ISBN", Kind: KindText, Required: true},
			{Name: "numCopiesAvailable", Label: "Copies available", Kind: KindNumber, Required: true},
			{Name: "authorIds", Label: "Author IDs (comma separated)", Kind: KindIDList, Source: IDs("authors")},
			{Name: "pressId", Label: "Press ID", Kind: KindNumber, Source: Nested("press", "id")},
			{Name: "tagIds", Label: "Tag IDs (comma separated)", Kind: KindIDList, Source: IDs("tags")},
		},
		Searchable: true,
		SearchHint: "title or author",
		Filters: []Filter{
			{Key: "tag", Label: "Tag ID"},
			{Key: "press", Label: "Press ID"},
		},
		Can:       Capabilities{Create: true, Edit: true, Delete: true, Detail: true},
		EmptyText: "No books yet.",
	}

	Authors = &Descriptor{
		Name:  "authors",
		Noun:  "author",
		Title: "Authors",
		Path:  "/authors",
		Columns: []Column{
			{Label: "ID", Accessor: Value("id")},
			{Label: "First name", Accessor: Value("firstName")},
			{Label: "Last name", Accessor: Value("lastName")},
			{Label: "Bio", Accessor: Value("bio")},
			{Label: "Created", Accessor: DateTime("createdAt")},
			{Label: "Updated", Accessor: DateTime("updatedAt")},
		},
		Fields: []Field{
			{Name: "firstName", Label: "First name", Kind: KindText, Required: true},
			{Name: "lastName", Label: "Last name", Kind: KindText},
			{Name: "bio", Label: "Bio", Kind: KindTextarea},
		},
		Searchable: true,
		SearchHint: "author name",
		Can:        Capabilities{Create: true, Edit: true, Delete: true, Detail: true},
		EmptyText:  "No authors yet.",
	}

	Presses = &Descriptor{
		Name:  "presses",
		Noun:  "press",
		Title: "Presses",
		Path:  "/presses",
		Columns: []Column{
			{Label: "ID", Accessor: Value("id")},
			{Label: "Name", Accessor: Value("name")},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
		},
		Searchable: true,
		SearchHint: "press name",
		Can:        Capabilities{Create: true, Edit: true, Delete: true, Detail: true},
		EmptyText:  "No presses yet.",
	}

	Tags = &Descriptor{
		Name:  "tags",
		Noun:  "tag",
		Title: "Tags",
		Path:  "/tags",
		Columns: []Column{
			{Label: "ID", Accessor: Value("id")},
			{Label: "Name", Accessor: Value("name")},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
		},
		Searchable: true,
		SearchHint: "tag name",
		Can:        Capabilities{Create: true, Edit: true, Delete: true, Detail: true},
		EmptyText:  "No tags yet.",
	}

	Loans = &Descriptor{
		Name:  "loans",
		Noun:  "loan",
		Title: "Loans",
		Path:  "/loans",
		Columns: []Column{
			{Label: "ID", Accessor: Value("id")},
			{Label: "User ID", Accessor: Value("userId")},
			{Label: "Book ID", Accessor: Value("bookId")},
			{Label: "Checked out", Accessor: Date("checkoutDate")},
			{Label: "Due", Accessor: Date("dueDate")},
			{Label: "Returned", Accessor: Date("returnDate")},
			{Label: "Overdue", Accessor: YesNo("isOverdue")},
		},
		Filters: []Filter{
			{Key: "userId", Label: "User ID"},
		},
		Forms: []FormSpec{
			{
				Name:   "checkout",
				Title:  "Check out a book",
				Method: http.MethodPost,
				Path:   "/loans/checkout",
				Fields: []Field{
					{Name: "userId", Label: "User ID", Kind: KindNumber, Required: true},
					{Name: "bookId", Label: "Book ID", Kind: KindNumber, Required: true},
				},
				SuccessText: "Book checked out",
				FailureText: "Checkout failed",
			},
			{
				Name:   "return",
				Title:  "Return a book",
				Method: http.MethodPost,
				Path:   "/loans/return",
				Fields: []Field{
					{Name: "loanId", Label: "Loan ID", Kind: KindNumber, Required: true},
				},
				SuccessText: "Book returned",
				FailureText: "Return failed",
			},
		},
		EmptyText: "No loans found.",
	}

	Users = &Descriptor{
		Name:  "users",
		Noun:  "user",
		Title: "Users",
		Path:  "/users",
		Columns: []Column{
			{Label: "ID", Accessor: Value("id")},
			{Label: "Username", Accessor: Value("username")},
			{Label: "Account", Accessor: Value("account")},
		},
		Searchable: true,
		SearchHint: "username or account",
		Can:        Capabilities{Detail: true},
		EmptyText:  "No users found.",
	}
)

// Login and Register are the authentication forms
var (
	Login = FormSpec{
		Name:   "login",
		Title:  "Log in",
		Method: http.MethodPost,
		Path:   "/auth/login",
		Fields: []Field{
			{Name: "account", Label: "Account", Kind: KindText, Required: true},
			{Name: "password", Label: "Password", Kind: KindPassword, Required: true},
		},
		SuccessText: "Logged in",
		FailureText: "Login failed, check your account and password",
	}

	Register = FormSpec{
		Name:   "register",
		Title:  "Register",
		Method: http.MethodPost,
		Path:   "/auth/register",
		Fields: []Field{
			{Name: "username", Label: "Display name", Kind: KindText, Required: true},
			{Name: "account", Label: "Account", Kind: KindText, Required: true},
			{Name: "password", Label: "Password", Kind: KindPassword, Required: true},
		},
		SuccessText: "Registered, please log in",
		FailureText: "Registration failed, please try again later",
	}
)

var catalog = []*Descriptor{Books, Authors, Presses, Tags, Loans, Users}

// Lookup returns the descriptor registered under name
func Lookup(name string) (*Descriptor, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Catalog returns every descriptor in navigation order
func Catalog() []*Descriptor {
	out := make([]*Descriptor, len(catalog))
	copy(out, catalog)
	return out
}
