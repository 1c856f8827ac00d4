package playbook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/infinidb/emtools/pkg/config"
	"github.com/infinidb/emtools/pkg/util/exec"
)

// fakeExecutor plays the part of ansible: for module runs it writes the
// configured per-host results into the tree directory named by -t.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   []string
	dirs    []string
	tree    map[string]string
	result  exec.Result
	err     error
	noStart bool
	output  string
}

func (f *fakeExecutor) ExecuteCommand(_ context.Context, dir string, command string, arg ...string) (*exec.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	line := strings.TrimSpace(command + " " + strings.Join(arg, " "))
	f.calls = append(f.calls, line)
	f.dirs = append(f.dirs, dir)
	if f.noStart {
		return nil, os.ErrNotExist
	}

	for i, a := range arg {
		if a == "-t" && i+1 < len(arg) {
			treeDir := filepath.Join(dir, arg[i+1])
			if err := os.MkdirAll(treeDir, 0755); err != nil {
				return nil, err
			}
			for host, content := range f.tree {
				if err := os.WriteFile(filepath.Join(treeDir, host), []byte(content), 0644); err != nil {
					return nil, err
				}
			}
		}
	}

	r := f.result
	r.Cmd = line
	if f.err != nil {
		return &r, f.err
	}
	return &r, nil
}

func (f *fakeExecutor) ExecuteCommandWithOutput(_ context.Context, command string, arg ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, strings.TrimSpace(command+" "+strings.Join(arg, " ")))
	if f.noStart {
		return "", os.ErrNotExist
	}
	return f.output, f.err
}

func newTestOptions(base string) *config.Options {
	opts := config.DefaultOptions()
	opts.ClusterBase = filepath.Join(base, "clusters")
	opts.PlaybookTemplate = filepath.Join(base, "template")
	return opts
}
