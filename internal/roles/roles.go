// Package roles loads agent role definitions from YAML files. A role
// names the command launched in a worker's pane and the prompt template
// rendered into the worker's context overlay.
package roles

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/mhelleborg/taskforce/internal/errs"
)

// Role is a single agent type definition.
type Role struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Prompt  string   `yaml:"prompt"`
}

// Validate checks a parsed role definition.
func (r Role) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("role: name is required")
	}
	return nil
}

// LaunchLine returns the shell line that starts this role's process.
func (r Role) LaunchLine() string {
	parts := append([]string{r.Command}, r.Args...)
	return strings.Join(parts, " ")
}

const defaultPrompt = `You are {{.Worker}} on team {{.Team}}, working as a {{.AgentType}} agent.

Pick up tasks assigned to you from the task board at {{.TasksDir}}.
Messages arrive in {{.Inbox}}. Work from {{.Cwd}}.
`

// Library resolves agent types to roles. Types without a YAML definition
// fall back to a synthetic role using the default launch command, so a
// plain team can run without any roles directory at all.
type Library struct {
	roles          map[string]Role
	defaultCommand string

	// lookPath is swapped in tests.
	lookPath func(string) (string, error)
}

// Load scans dir for *.yaml / *.yml role files. A missing directory is
// treated as an empty library, not an error.
func Load(dir, defaultCommand string) (*Library, error) {
	lib := &Library{
		roles:          make(map[string]Role),
		defaultCommand: defaultCommand,
		lookPath:       exec.LookPath,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("read roles dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read role file %s: %w", path, err)
		}

		var role Role
		if err := yaml.Unmarshal(data, &role); err != nil {
			return nil, fmt.Errorf("parse role file %s: %w", path, err)
		}
		if err := role.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		lib.roles[role.Name] = role
	}

	return lib, nil
}

// Resolve returns the role for an agent type, synthesizing a default
// role for unknown types.
func (l *Library) Resolve(agentType string) Role {
	if role, ok := l.roles[agentType]; ok {
		if role.Command == "" {
			role.Command = l.defaultCommand
		}
		if role.Prompt == "" {
			role.Prompt = defaultPrompt
		}
		return role
	}
	return Role{
		Name:    agentType,
		Command: l.defaultCommand,
		Prompt:  defaultPrompt,
	}
}

// ValidateLaunchable checks that every distinct agent type resolves to a
// command present on PATH. A missing command is a precondition failure;
// callers run this before creating any session or state.
func (l *Library) ValidateLaunchable(agentTypes []string) error {
	seen := make(map[string]bool)
	for _, at := range agentTypes {
		if seen[at] {
			continue
		}
		seen[at] = true

		role := l.Resolve(at)
		bin := strings.Fields(role.Command)
		if len(bin) == 0 {
			return errs.NewPrecondition(fmt.Sprintf("launch command for agent type %q", at), nil)
		}
		if _, err := l.lookPath(bin[0]); err != nil {
			return errs.NewPrecondition(fmt.Sprintf("%s (agent type %q)", bin[0], at), err)
		}
	}
	return nil
}

// OverlayData is the context available to role prompt templates.
type OverlayData struct {
	Team      string
	Worker    string
	AgentType string
	Cwd       string
	TasksDir  string
	Inbox     string
}

// RenderOverlay renders a role's prompt template into the worker's
// context overlay document.
func RenderOverlay(role Role, data OverlayData) (string, error) {
	tmpl, err := template.New("overlay").Parse(role.Prompt)
	if err != nil {
		return "", fmt.Errorf("parse prompt template for role %s: %w", role.Name, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s — %s\n\n", data.Worker, role.Name)
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt for role %s: %w", role.Name, err)
	}
	return sb.String(), nil
}
