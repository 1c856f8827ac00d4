package playbook

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/infinidb/emtools/pkg/config"
)

const sshPassVar = "ansible_ssh_pass"

// Group is one group of an ansible inventory.
type Group struct {
	Name     string
	Hosts    []string
	Vars     map[string]string
	Children []string
}

type inventoryGroup struct {
	Hosts    map[string]map[string]interface{} `yaml:"hosts,omitempty"`
	Vars     map[string]string                 `yaml:"vars,omitempty"`
	Children map[string]*inventoryGroup        `yaml:"children,omitempty"`
}

// InventoryPath returns the path of an inventory relative to the playbook root.
func InventoryPath(file string) string {
	return filepath.Join(config.InventoryDir, file+".yml")
}

// WriteInventory replaces the named inventory with the given groups. When ssh
// is configured with a password it is added to the vars of the all group.
func (m *Manager) WriteInventory(file string, groups ...Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := map[string]*inventoryGroup{}
	for _, g := range groups {
		ig := &inventoryGroup{}
		if len(g.Hosts) > 0 {
			ig.Hosts = make(map[string]map[string]interface{}, len(g.Hosts))
			for _, h := range g.Hosts {
				ig.Hosts[h] = nil
			}
		}
		if len(g.Vars) > 0 {
			ig.Vars = make(map[string]string, len(g.Vars))
			for k, v := range g.Vars {
				ig.Vars[k] = v
			}
		}
		if len(g.Children) > 0 {
			ig.Children = make(map[string]*inventoryGroup, len(g.Children))
			for _, c := range g.Children {
				ig.Children[c] = &inventoryGroup{}
			}
		}
		doc[g.Name] = ig
	}

	if m.sshPass != "" {
		all, ok := doc[config.AllHostsGroup]
		if !ok {
			all = &inventoryGroup{}
			doc[config.AllHostsGroup] = all
		}
		if all.Vars == nil {
			all.Vars = map[string]string{}
		}
		all.Vars[sshPassVar] = m.sshPass
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal inventory %s", file)
	}
	path := filepath.Join(m.rootDir, InventoryPath(file))
	if err := writeFileAtomic(path, data, 0600); err != nil {
		return errors.Wrapf(err, "failed to write inventory %s", path)
	}
	logger.Debugf("wrote inventory %s with %d groups", path, len(doc))
	return nil
}

// ReadInventory returns the groups of the named inventory sorted by name,
// with hosts and children sorted too.
func (m *Manager) ReadInventory(file string) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := filepath.Join(m.rootDir, InventoryPath(file))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read inventory %s", path)
	}
	doc := map[string]*inventoryGroup{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse inventory %s", path)
	}

	groups := make([]Group, 0, len(doc))
	for name, ig := range doc {
		g := Group{Name: name, Vars: ig.Vars}
		for h := range ig.Hosts {
			g.Hosts = append(g.Hosts, h)
		}
		for c := range ig.Children {
			g.Children = append(g.Children, c)
		}
		sort.Strings(g.Hosts)
		sort.Strings(g.Children)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
