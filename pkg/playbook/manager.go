package playbook

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"github.com/infinidb/emtools/pkg/config"
	"github.com/infinidb/emtools/pkg/util/exec"
)

var logger = capnslog.NewPackageLogger("github.com/infinidb/emtools", "playbook")

// Manager owns the playbook directory of one cluster: its ansible.cfg,
// ssh key, inventories and the ansible runs made from it.
//
// Every method is idempotent, and the directory is reused across invocations.
//
//	<clusterBase>/<name>/
//	    ansible.cfg
//	    .ssh/private_key
//	    inventory/<file>.yml
//	    log/ansible.log
//	    tree/<run>/<host>
//	    cluster_files/
type Manager struct {
	name     string
	rootDir  string
	opts     *config.Options
	executor exec.Executor

	// guards the inventory files and sshPass
	mu      sync.Mutex
	sshPass string
}

// New prepares the playbook directory for the named cluster, syncing it
// from the configured template.
func New(name string, opts *config.Options, executor exec.Executor) (*Manager, error) {
	if err := os.MkdirAll(opts.ClusterBase, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create cluster base %s", opts.ClusterBase)
	}
	m := &Manager{
		name:     name,
		rootDir:  filepath.Join(opts.ClusterBase, name),
		opts:     opts,
		executor: executor,
	}
	if err := m.SyncTemplate(opts.PlaybookTemplate); err != nil {
		return nil, errors.Wrap(err, "failed to update playbook from template")
	}
	return m, nil
}

// Name returns the cluster name the playbook belongs to.
func (m *Manager) Name() string {
	return m.name
}

// RootDir returns the playbook root directory.
func (m *Manager) RootDir() string {
	return m.rootDir
}

// ClusterFile returns the local path of a file fetched from the cluster.
func (m *Manager) ClusterFile(name string) string {
	return filepath.Join(m.rootDir, config.ClusterFilesDir, name)
}
