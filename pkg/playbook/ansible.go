package playbook

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/infinidb/emtools/pkg/config"
	"github.com/infinidb/emtools/pkg/util/exec"
	"github.com/infinidb/emtools/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const noOutputMsg = "no json output from ansible - likely no hosts matched host_pattern"

var recapPattern = regexp.MustCompile(`^([a-zA-Z0-9\-_\.]+)\s+:\s+ok=([0-9]+)\s+changed=([0-9]+)\s+unreachable=([0-9]+)\s+failed=([0-9]+)`)

// HostResult is the raw per-host result document written by ansible.
type HostResult map[string]interface{}

// Msg returns the msg field of the result, if any.
func (r HostResult) Msg() string {
	if msg, ok := r["msg"].(string); ok {
		return msg
	}
	return ""
}

// Has reports whether the result carries the given key.
func (r HostResult) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// ModuleResult splits the hosts of an ansible module run by reachability.
type ModuleResult struct {
	Contacted map[string]HostResult
	Dark      map[string]HostResult
}

// RecapStats is one line of the PLAY RECAP of a playbook run.
type RecapStats struct {
	OK          int
	Changed     int
	Unreachable int
	Failed      int
}

// PlaybookResult is the outcome of an ansible-playbook run. RC is not
// turned into an error.
type PlaybookResult struct {
	RC     int
	Recap  map[string]RecapStats
	Stdout string
	Stderr string
}

// RunError reports an ansible run that produced no usable result.
type RunError struct {
	Msg    string
	Result exec.Result
}

func (e *RunError) Error() string       { return e.Msg }
func (e *RunError) Command() string     { return e.Result.Cmd }
func (e *RunError) ExitCode() int       { return e.Result.RC }
func (e *RunError) Output() string      { return e.Result.Stdout }
func (e *RunError) ErrorOutput() string { return e.Result.Stderr }

// RunModule runs an ansible module against the hosts matching hostPattern
// in the named inventory.
func (m *Manager) RunModule(ctx context.Context, inventory, hostPattern, module, moduleArgs string) (*ModuleResult, error) {
	treeDir := filepath.Join(config.TreeDir, uuid.New().String())
	absTree := filepath.Join(m.rootDir, treeDir)
	defer os.RemoveAll(absTree)

	args := []string{"-i", InventoryPath(inventory), hostPattern, "-m", module, "-t", treeDir}
	if moduleArgs != "" {
		args = append(args, "-a", moduleArgs)
	}
	if m.opts.ModuleLibrary != "" {
		args = append(args, "-M", m.opts.ModuleLibrary)
	}

	result, err := m.run(ctx, m.opts.Ansible.Binary, args...)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absTree)
	if err != nil || len(entries) == 0 {
		return nil, &RunError{Msg: noOutputMsg, Result: *result}
	}

	out := &ModuleResult{
		Contacted: map[string]HostResult{},
		Dark:      map[string]HostResult{},
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(absTree, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read ansible result for %s", e.Name())
		}
		hr := HostResult{}
		if err := json.Unmarshal(data, &hr); err != nil {
			return nil, errors.Wrapf(err, "failed to decode ansible result for %s", e.Name())
		}
		if unreachable, _ := hr["unreachable"].(bool); unreachable {
			out.Dark[e.Name()] = hr
		} else {
			out.Contacted[e.Name()] = hr
		}
	}
	logger.Debugf("module %s on %s: %d contacted, %d dark", module, hostPattern, len(out.Contacted), len(out.Dark))
	return out, nil
}

// RunPlaybook runs a playbook of the playbook directory, optionally limited
// to a subset of hosts.
func (m *Manager) RunPlaybook(ctx context.Context, playbook, inventory, limit, extraVars string) (*PlaybookResult, error) {
	args := []string{"-i", InventoryPath(inventory), playbook}
	if limit != "" {
		args = append(args, "-l", limit)
	}
	if extraVars != "" {
		args = append(args, "--extra-vars="+extraVars)
	}
	if m.opts.ModuleLibrary != "" {
		args = append(args, "-M", m.opts.ModuleLibrary)
	}

	result, err := m.run(ctx, m.opts.Ansible.PlaybookBinary, args...)
	if err != nil {
		return nil, err
	}
	return &PlaybookResult{
		RC:     result.RC,
		Recap:  parseRecap(result.Stdout),
		Stdout: result.Stdout,
		Stderr: result.Stderr,
	}, nil
}

// run executes an ansible command from the playbook root. A non-zero exit
// still yields a result since ansible reports host failures that way.
// AnsibleVersion returns the first line of "ansible --version", which also
// tells whether ansible can be started at all.
func (m *Manager) AnsibleVersion(ctx context.Context) (string, error) {
	out, err := m.executor.ExecuteCommandWithOutput(ctx, m.opts.Ansible.Binary, "--version")
	if err != nil {
		return "", errors.Wrapf(err, "failed to run %s --version", m.opts.Ansible.Binary)
	}
	first, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(first), nil
}

func (m *Manager) run(ctx context.Context, command string, args ...string) (*exec.Result, error) {
	result, err := m.executor.ExecuteCommand(ctx, m.rootDir, command, args...)
	if err != nil {
		if _, ok := err.(*exec.CommandError); !ok || result == nil {
			return nil, errors.Wrapf(err, "failed to run %s", command)
		}
	}
	return result, nil
}

func parseRecap(stdout string) map[string]RecapStats {
	recap := map[string]RecapStats{}
	inRecap := false
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if !inRecap {
			inRecap = strings.HasPrefix(line, "PLAY RECAP")
			continue
		}
		match := recapPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		recap[match[1]] = RecapStats{
			OK:          atoi(match[2]),
			Changed:     atoi(match[3]),
			Unreachable: atoi(match[4]),
			Failed:      atoi(match[5]),
		}
	}
	return recap
}

func atoi(s string) int {
	v, _ := utils.Str2Int(s)
	return v
}
