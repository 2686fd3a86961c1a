package tmux

// Ops abstracts tmux session/pane operations for testing.
type Ops interface {
	HasSession(name string) bool
	NewSession(name, dir string) (string, error)
	KillSession(name string) error
	ListPanes(session string) ([]string, error)
	SplitPane(target string, horizontal bool, dir string) error
	SelectLayout(session, layout string) error
	SendLiteral(paneID, text string) error
	SendEnter(paneID string) error
	PaneDead(paneID string) (bool, error)
}
