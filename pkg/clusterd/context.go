package clusterd

import (
	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes"

	"github.com/infinidb/emtools/pkg/config"
	"github.com/infinidb/emtools/pkg/netutil"
	"github.com/infinidb/emtools/pkg/playbook"
	"github.com/infinidb/emtools/pkg/util/exec"
)

// Context carries what one emtools invocation needs to reach the cluster.
type Context struct {
	// Executor runs the local ansible commands
	Executor exec.Executor

	// Resolver answers DNS questions from the local host
	Resolver netutil.Resolver

	// Clientset is a connection to the core kubernetes API, only set when
	// seed hosts come from kubernetes nodes
	Clientset kubernetes.Interface

	Options *config.Options

	Log logr.Logger
}

// NewContext returns a Context that runs real commands and uses the system resolver.
func NewContext(opts *config.Options, log logr.Logger) *Context {
	return &Context{
		Executor: &exec.CommandExecutor{},
		Resolver: netutil.NewSystemResolver(),
		Options:  opts,
		Log:      log,
	}
}

// Playbook prepares the playbook directory of the named cluster.
func (c *Context) Playbook(clusterName string) (*playbook.Manager, error) {
	return playbook.New(clusterName, c.Options, c.Executor)
}
