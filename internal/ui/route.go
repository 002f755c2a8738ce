package ui

// Page is a screen of the application
type Page int

const (
	PageLogin Page = iota
	PageRegister
	PageDashboard
	PageTrading
	PageWatchlist
	PageAnalytics
	PageAccount
)

// navPages is the navbar order; the number keys select them 1-based
var navPages = []Page{PageDashboard, PageTrading, PageWatchlist, PageAnalytics, PageAccount}

func (p Page) String() string {
	switch p {
	case PageLogin:
		return "Login"
	case PageRegister:
		return "Register"
	case PageDashboard:
		return "Dashboard"
	case PageTrading:
		return "Trading"
	case PageWatchlist:
		return "Watchlist"
	case PageAnalytics:
		return "Analytics"
	case PageAccount:
		return "Account"
	default:
		return "Unknown"
	}
}

// Protected reports whether the page needs a session
func (p Page) Protected() bool {
	return p != PageLogin && p != PageRegister
}

// Resolve applies route gating: protected pages send anonymous users to
// Login, and the auth pages send logged-in users to the Dashboard. Unknown
// pages fall back to the default route.
func Resolve(p Page, authenticated bool) Page {
	if p < PageLogin || p > PageAccount {
		p = PageDashboard
	}
	switch {
	case p.Protected() && !authenticated:
		return PageLogin
	case !p.Protected() && authenticated:
		return PageDashboard
	default:
		return p
	}
}

func navIndex(p Page) int {
	for i, np := range navPages {
		if np == p {
			return i
		}
	}
	return -1
}

// cyclePage moves through the navbar by delta, wrapping at both ends
func cyclePage(p Page, delta int) Page {
	i := navIndex(p)
	if i < 0 {
		return PageDashboard
	}
	n := len(navPages)
	return navPages[((i+delta)%n+n)%n]
}
