package store

// Menu is the selected navigation entry.
type Menu string

const (
	MenuDashboard  Menu = "dashboard"
	MenuProjects   Menu = "projects"
	MenuCategories Menu = "categories"
)

// Modal is the dialog currently open, if any.
type Modal string

const (
	ModalNone           Modal = ""
	ModalNewProject     Modal = "new-project"
	ModalProjectCreated Modal = "project-created"
	ModalIconPicker     Modal = "icon-picker"
	ModalNewTask        Modal = "new-task"
	ModalAddCategory    Modal = "add-category"
)

// UIState holds the presentation toggles. It survives logout except for
// the open modal and dropdown.
type UIState struct {
	DarkMode       bool
	SidebarOpen    bool
	Menu           Menu
	Modal          Modal
	ActiveDropdown string
}

func (s *Store) UI() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ui
}

// ToggleDarkMode flips the theme and returns the new value.
func (s *Store) ToggleDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.DarkMode = !s.ui.DarkMode
	return s.ui.DarkMode
}

func (s *Store) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.SidebarOpen = !s.ui.SidebarOpen
	return s.ui.SidebarOpen
}

// SelectMenu switches the navigation entry and closes the sidebar, as the
// compact layout does after a pick.
func (s *Store) SelectMenu(m Menu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.Menu = m
	s.ui.SidebarOpen = false
}

// OpenModal replaces whatever dialog is open.
func (s *Store) OpenModal(m Modal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.Modal = m
}

func (s *Store) CloseModal() {
	s.OpenModal(ModalNone)
}

// SetActiveDropdown marks the item whose action menu is open. Selecting the
// open item again closes it.
func (s *Store) SetActiveDropdown(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ui.ActiveDropdown == id {
		s.ui.ActiveDropdown = ""
		return
	}
	s.ui.ActiveDropdown = id
}
