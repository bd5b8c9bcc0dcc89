package admin

import "library-admin/internal/models"

// NavItem is one navigation entry. Command names the console command that opens it.
type NavItem struct {
	Label   string
	Command string
}

// Nav is the navigation bar
type Nav struct {
	Greeting string
	Pages    []NavItem
	Account  []NavItem
}

// Navbar builds the navigation bar for the current user marker, nil when logged out.
// Entity pages are listed either way.
func Navbar(user *models.User) Nav {
	nav := Nav{Pages: make([]NavItem, 0, len(catalog))}
	for _, d := range catalog {
		nav.Pages = append(nav.Pages, NavItem{Label: d.Title, Command: d.Name})
	}

	if user != nil {
		nav.Greeting = "Welcome, " + user.Username
		nav.Account = []NavItem{{Label: "Logout", Command: "logout"}}
		return nav
	}
	nav.Account = []NavItem{
		{Label: "Login", Command: "login"},
		{Label: "Register", Command: "register"},
	}
	return nav
}
