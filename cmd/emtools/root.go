package emtools

import (
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/infinidb/emtools/pkg/config"
)

var logger = capnslog.NewPackageLogger("github.com/infinidb/emtools", "cmd")

// RootCmd is the emtools entry point. Sub-commands are added by main.
var RootCmd = &cobra.Command{
	Use:   "emtools",
	Short: "Enterprise manager tools for InfiniDB clusters",
	Long: `emtools inspects the hosts of an InfiniDB cluster over ssh and reports
what it finds as a FactReply. Hosts that already run InfiniDB contribute
the rest of their cluster to the discovery.`,
	PersistentPreRunE: setupLogging,
}

type rootOptions struct {
	configFile       string
	clusterBase      string
	playbookTemplate string
	parallelism      int
	logLevel         string
	devLog           bool
}

var rootOpts = &rootOptions{}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&rootOpts.configFile, "config", "", "YAML properties file")
	flags.StringVar(&rootOpts.clusterBase, "cluster-base", "", "directory that holds one playbook directory per cluster")
	flags.StringVar(&rootOpts.playbookTemplate, "playbook-template", "", "playbook directory copied into each cluster directory")
	flags.IntVar(&rootOpts.parallelism, "parallelism", config.DefaultParallelism, "number of hosts probed at once")
	flags.StringVar(&rootOpts.logLevel, "log-level", "INFO", "package log level (CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG, TRACE)")
	flags.BoolVar(&rootOpts.devLog, "dev-log", false, "use the human readable development logger for discovery")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level, err := capnslog.ParseLevel(strings.ToUpper(rootOpts.logLevel))
	if err != nil {
		return errors.Wrapf(err, "invalid --log-level %q", rootOpts.logLevel)
	}
	capnslog.SetGlobalLogLevel(level)
	ctrl.SetLogger(zap.New(zap.UseDevMode(rootOpts.devLog)))
	return nil
}

// loadOptions reads the properties file and applies the flags that were set.
func loadOptions(cmd *cobra.Command) (*config.Options, error) {
	opts, err := config.LoadOptions(rootOpts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("cluster-base") {
		opts.ClusterBase = rootOpts.clusterBase
	}
	if flags.Changed("playbook-template") {
		opts.PlaybookTemplate = rootOpts.playbookTemplate
	}
	if flags.Changed("parallelism") {
		opts.Parallelism = rootOpts.parallelism
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger.Debugf("using cluster base %s and template %s", opts.ClusterBase, opts.PlaybookTemplate)
	return opts, nil
}
