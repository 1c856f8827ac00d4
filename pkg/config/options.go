package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// HostChecks are the optional eligibility checks applied to every probed host.
type HostChecks struct {
	// RequireSudo rejects hosts without passwordless sudo.
	RequireSudo bool `yaml:"requireSudo"`
	// RuntimeVersions lists the accepted python major.minor versions, e.g. "2.6".
	// Empty accepts any version.
	RuntimeVersions []string `yaml:"runtimeVersions"`
}

// Ansible names the binaries used to reach remote hosts.
type Ansible struct {
	Binary         string `yaml:"binary"`
	PlaybookBinary string `yaml:"playbookBinary"`
}

// Options is the runtime configuration of emtools.
type Options struct {
	// ClusterBase is the directory that holds one playbook directory per cluster.
	ClusterBase string `yaml:"clusterBase"`
	// PlaybookTemplate is copied into each cluster directory before use.
	PlaybookTemplate string `yaml:"playbookTemplate"`
	// ModuleLibrary is passed to ansible as the module search path.
	ModuleLibrary string     `yaml:"moduleLibrary"`
	Parallelism   int        `yaml:"parallelism"`
	HostChecks    HostChecks `yaml:"hostChecks"`
	Ansible       Ansible    `yaml:"ansible"`
}

// HomeDir returns the emtools home, taken from the environment when set.
func HomeDir() string {
	if dir := os.Getenv(HomeEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		logger.Warningf("failed to find the user home directory, using the working directory: %v", err)
		return DefaultHomeDir
	}
	return filepath.Join(home, DefaultHomeDir)
}

// DefaultOptions returns the options used when no properties file is given.
func DefaultOptions() *Options {
	home := HomeDir()
	return &Options{
		ClusterBase:      filepath.Join(home, PlaybookDirName),
		PlaybookTemplate: filepath.Join(home, PlaybookDirName, DefaultTemplateName),
		Parallelism:      DefaultParallelism,
		Ansible: Ansible{
			Binary:         "ansible",
			PlaybookBinary: "ansible-playbook",
		},
	}
}

// LoadOptions reads a YAML properties file over the defaults.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read properties file %s", path)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, errors.Wrapf(err, "failed to parse properties file %s", path)
	}
	logger.Infof("loaded properties from %s", path)
	return opts, nil
}

// Validate checks the options after every override has been applied.
func (o *Options) Validate() error {
	if o.ClusterBase == "" {
		return errors.New("clusterBase cannot be empty")
	}
	if o.PlaybookTemplate == "" {
		return errors.New("playbookTemplate cannot be empty")
	}
	if o.Parallelism < 1 {
		return errors.Errorf("parallelism must be at least 1, got %d", o.Parallelism)
	}
	if o.Ansible.Binary == "" || o.Ansible.PlaybookBinary == "" {
		return errors.New("ansible binaries cannot be empty")
	}
	for _, v := range o.HostChecks.RuntimeVersions {
		if RuntimeMajorMinor(v) == "" {
			return errors.Errorf("invalid runtime version %q", v)
		}
	}
	return nil
}

// CanonicalVersion turns a bare version such as "2.7.5" into the "v2.7.5"
// form golang.org/x/mod/semver expects.
func CanonicalVersion(v string) string {
	if v == "" || v[0] == 'v' {
		return v
	}
	return "v" + v
}

// RuntimeMajorMinor returns the "vMAJOR.MINOR" of a runtime version string,
// ignoring anything after the leading run of digits and dots, so "2.7.5+"
// gives "v2.7". It returns "" when no version can be read.
func RuntimeMajorMinor(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexFunc(v, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); i >= 0 {
		v = v[:i]
	}
	return semver.MajorMinor(CanonicalVersion(strings.TrimRight(v, ".")))
}
