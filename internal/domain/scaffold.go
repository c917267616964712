package domain

import (
	"fmt"
	"log/slog"

	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// Scaffolder creates the directory convention the scanner expects: a project
// root with one folder per tab. It is a thin generator; the scanner has no
// special cases for scaffolded projects.
type Scaffolder interface {
	Create(root m.Path, cartName string) error
}

type scaffolder struct {
	fs adapter.ProjectFSAdapter
}

// NewScaffolder constructs a Scaffolder backed by the provided filesystem
// adapter.
func NewScaffolder(fs adapter.ProjectFSAdapter) Scaffolder {
	return &scaffolder{fs: fs}
}

const mainFragment = `function _init()
end

function _update()
end

function _draw()
 cls()
 print("hello from ` + "%s" + `",40,60,7)
end
`

const utilFragment = `function clamp(v,lo,hi)
 return max(lo,min(hi,v))
end
`

// Create lays out root with two starter tab folders and a config file. It
// refuses to scaffold over an existing directory.
func (s *scaffolder) Create(root m.Path, cartName string) error {
	if _, err := s.fs.Stat(root); err == nil {
		return fmt.Errorf("%s already exists", root)
	}

	tabs := map[string]map[string]string{
		"0_main": {
			"main.lua": fmt.Sprintf(mainFragment, cartName),
		},
		"1_util": {
			"util.lua": utilFragment,
		},
	}

	for folder, files := range tabs {
		dir := s.fs.JoinPath(string(root), folder)
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create tab folder %q: %w", folder, err)
		}

		for name, content := range files {
			path := s.fs.JoinPath(string(dir), name)
			if err := s.fs.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write fragment %q: %w", name, err)
			}
		}
	}

	config := fmt.Sprintf("cart: %s\n", cartName)
	if err := s.fs.WriteFile(s.fs.JoinPath(string(root), "picobuild.yaml"), []byte(config), 0o644); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}

	slog.Info("project scaffolded", "root", root, "cart", cartName)

	return nil
}
