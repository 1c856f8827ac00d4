package probe

import (
	"context"
	"fmt"

	"github.com/coreos/pkg/capnslog"
)

var logger = capnslog.NewPackageLogger("github.com/infinidb/emtools", "probe")

// State is the result class of probing one host.
type State int

const (
	Contacted State = iota
	Unreachable
	ExecutionFailed
)

func (s State) String() string {
	switch s {
	case Contacted:
		return "Contacted"
	case Unreachable:
		return "Unreachable"
	case ExecutionFailed:
		return "ExecutionFailed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SystemFacts are the operating system facts of a contacted host.
type SystemFacts struct {
	FQDN           string
	Hostname       string
	IPAddresses    []string
	OSFamily       string
	ProcessorCount int
	MemoryMB       int
	// SwapMB is nil when the host does not report swap.
	SwapMB        *int
	PythonVersion string
}

// IPAddress returns the first reported address.
func (f *SystemFacts) IPAddress() string {
	if len(f.IPAddresses) == 0 {
		return ""
	}
	return f.IPAddresses[0]
}

// ProductFacts describe what is installed on a host. Empty versions mean
// the component is not installed.
type ProductFacts struct {
	HomeDir            string
	Sudo               bool
	GlusterVersion     string
	HadoopVersion      string
	PdshVersion        string
	InfiniDBVersion    string
	InfiniDBInstallDir string
	InfiniDBUser       string
	CollectdVersion    string
	PythonStackVersion string
	GraphiteVersion    string
	ToolsVersion       string
	Port3306Available  bool
}

// Outcome is the result of Probe. Facts is set only when State is Contacted,
// Reason only otherwise.
type Outcome struct {
	State  State
	Reason string
	Facts  *SystemFacts
}

// HostProbe reaches single hosts over the remote execution layer.
type HostProbe interface {
	// Probe gathers the system facts of host.
	Probe(ctx context.Context, host string) Outcome
	// ProbeProductFacts gathers the product facts of a host Probe contacted.
	// An error is a remote execution failure; its message is the reason.
	ProbeProductFacts(ctx context.Context, host string) (*ProductFacts, error)
	// FetchConfig copies the installation configuration of host to the local
	// side and returns its path.
	FetchConfig(ctx context.Context, host string) (string, error)
}

// FetchError reports a failed configuration fetch.
type FetchError struct {
	Playbook string
	RC       int
	Stdout   string
	Stderr   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Failed to run playbook %s: rc=%d, stdout=%s, stderr=%s", e.Playbook, e.RC, e.Stdout, e.Stderr)
}
