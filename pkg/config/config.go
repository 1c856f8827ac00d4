package config

import "github.com/coreos/pkg/capnslog"

var logger = capnslog.NewPackageLogger("github.com/infinidb/emtools", "config")

const (
	// product
	ProductDir    = "Calpont"
	ProductConfig = "Calpont.xml"
	SuperUser     = "root"

	// fresh installs go here when the ssh user is SuperUser
	DefaultSuperUserInstallDir = "/usr/local/" + ProductDir

	// environment
	HomeEnvVar     = "INFINIDB_EM_TOOLS_HOME"
	DefaultHomeDir = ".emtools"

	// playbook directory layout, relative to the cluster root
	PlaybookDirName     = "playbooks"
	DefaultTemplateName = "template"
	AnsibleConfigFile   = "ansible.cfg"
	AnsibleLogDir       = "log"
	AnsibleLogFile      = "ansible.log"
	SSHDir              = ".ssh"
	PrivateKeyFile      = "private_key"
	InventoryDir        = "inventory"
	DefaultInventory    = "default"
	TreeDir             = "tree"
	ClusterFilesDir     = "cluster_files"

	// modules and playbooks shipped in the template
	SetupModule        = "setup"
	SiteFactsModule    = "site_facts"
	GetInfoPlaybook    = "getinfo.yml"
	AllHostsGroup      = "all"
	DefaultSSHPort     = 22
	DefaultParallelism = 1
)
