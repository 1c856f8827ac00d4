package playbook

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/infinidb/emtools/pkg/config"
)

// ConfigSSH writes the ssh settings of the playbook. A key is stored under
// .ssh/private_key and referenced from ansible.cfg; a password is carried as
// an inventory variable. Exactly one of key and pass must be set.
func (m *Manager) ConfigSSH(user string, key, pass *string, port *int) error {
	if (key == nil) == (pass == nil) {
		return errors.New("must specify one of ssh_key or ssh_pass to configure ssh")
	}

	defaults := map[string]string{
		"remote_user":       user,
		"host_key_checking": "False",
		"log_path":          "./" + config.AnsibleLogDir + "/" + config.AnsibleLogFile,
		"transport":         "ssh",
	}

	if key != nil {
		sshDir := filepath.Join(m.rootDir, config.SSHDir)
		if err := os.MkdirAll(sshDir, 0700); err != nil {
			return errors.Wrapf(err, "failed to create %s", sshDir)
		}
		keyFile := filepath.Join(sshDir, config.PrivateKeyFile)
		if err := os.WriteFile(keyFile, []byte(*key), 0600); err != nil {
			return errors.Wrapf(err, "failed to write %s", keyFile)
		}
		// WriteFile keeps the mode of an existing file
		if err := os.Chmod(keyFile, 0600); err != nil {
			return errors.Wrapf(err, "failed to chmod %s", keyFile)
		}
		defaults["private_key_file"] = "./" + config.SSHDir + "/" + config.PrivateKeyFile
	}

	m.mu.Lock()
	if pass != nil {
		m.sshPass = *pass
	} else {
		m.sshPass = ""
	}
	m.mu.Unlock()

	if port != nil {
		defaults["remote_port"] = strconv.Itoa(*port)
	}

	return m.updateConfig(map[string]map[string]string{
		"defaults": defaults,
		"ssh_connection": {
			"pipelining": "True",
			"ssh_args":   "",
		},
	})
}

// updateConfig sets keys in ansible.cfg, keeping every other existing value.
func (m *Manager) updateConfig(sections map[string]map[string]string) error {
	path := filepath.Join(m.rootDir, config.AnsibleConfigFile)
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	for name, keys := range sections {
		sec := cfg.Section(name)
		for k, v := range keys {
			sec.Key(k).SetValue(v)
		}
	}
	if err := cfg.SaveTo(path); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// RemoteUser returns the remote_user configured in ansible.cfg.
func (m *Manager) RemoteUser() (string, error) {
	path := filepath.Join(m.rootDir, config.AnsibleConfigFile)
	cfg, err := ini.Load(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to load %s", path)
	}
	return cfg.Section("defaults").Key("remote_user").String(), nil
}
