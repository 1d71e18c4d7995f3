// Package navigation decides which page is active and gates the admin
// console behind a session.
package navigation

// Page identifies the active page
type Page int

const (
	Browse Page = iota
	Detail
	Admin
	Login
)

// String returns the page name used in logs
func (p Page) String() string {
	switch p {
	case Detail:
		return "detail"
	case Admin:
		return "admin"
	case Login:
		return "login"
	default:
		return "browse"
	}
}

// SessionReader reports whether someone is signed in
type SessionReader interface {
	SignedIn() bool
}

// Machine is the page state machine. It is owned by the UI loop and is not
// safe for concurrent use.
type Machine struct {
	session  SessionReader
	page     Page
	selected string // item ID, only while on Detail
	addForm  bool   // add-item form open, only while on Admin
}

// NewMachine starts on Browse
func NewMachine(session SessionReader) *Machine {
	return &Machine{session: session, page: Browse}
}

// Page returns the active page
func (m *Machine) Page() Page { return m.page }

// Selected returns the item shown on Detail
func (m *Machine) Selected() (string, bool) {
	if m.page != Detail {
		return "", false
	}
	return m.selected, true
}

// AddFormOpen reports whether the add-item form is showing
func (m *Machine) AddFormOpen() bool {
	return m.page == Admin && m.addForm
}

// SelectItem opens the detail page for id. Only valid from Browse.
func (m *Machine) SelectItem(id string) bool {
	if m.page != Browse || id == "" {
		return false
	}
	m.goTo(Detail)
	m.selected = id
	return true
}

// Back returns from Detail to Browse
func (m *Machine) Back() bool {
	if m.page != Detail {
		return false
	}
	m.goTo(Browse)
	return true
}

// RequestAdmin goes to Admin when signed in and to Login otherwise. The
// requested destination is not remembered. Ignored while on Login.
func (m *Machine) RequestAdmin() Page {
	if m.page == Login {
		return m.page
	}
	if m.session != nil && m.session.SignedIn() {
		m.goTo(Admin)
	} else {
		m.goTo(Login)
	}
	return m.page
}

// LoginSucceeded moves from Login to Admin
func (m *Machine) LoginSucceeded() bool {
	if m.page != Login {
		return false
	}
	m.goTo(Admin)
	return true
}

// CancelLogin abandons Login for Browse
func (m *Machine) CancelLogin() bool {
	if m.page != Login {
		return false
	}
	m.goTo(Browse)
	return true
}

// SignedOut returns to Browse from anywhere
func (m *Machine) SignedOut() {
	m.goTo(Browse)
}

// Home returns to Browse from anywhere
func (m *Machine) Home() {
	m.goTo(Browse)
}

// OpenAddForm shows the add-item form. Only valid on Admin.
func (m *Machine) OpenAddForm() bool {
	if m.page != Admin {
		return false
	}
	m.addForm = true
	return true
}

// CloseAddForm hides the add-item form
func (m *Machine) CloseAddForm() {
	m.addForm = false
}

// goTo switches page and drops the page-local selection and form flag
func (m *Machine) goTo(p Page) {
	m.page = p
	m.selected = ""
	m.addForm = false
}
