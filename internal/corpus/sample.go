package corpus

// Sample returns the three-task demonstration corpus.
func Sample() []Task {
	login := NewTask("PROJ-123", "Fix login authentication bug", "Users unable to login with SSO", "In Progress", "Authentication")
	oauth := NewTask("PROJ-124", "Add OAuth2 support", "Implement OAuth2 authentication flow", "New", "Authentication")
	profile := NewTask("PROJ-125", "Update user profile page", "Redesign user settings interface", "In Progress", "UI/UX")
	return []Task{login, oauth, profile}
}
