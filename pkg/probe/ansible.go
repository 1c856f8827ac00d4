package probe

import (
	"context"
	"io/fs"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/infinidb/emtools/pkg/config"
	"github.com/infinidb/emtools/pkg/playbook"
	"github.com/infinidb/emtools/pkg/utils"
)

// Runner is the part of the playbook manager the ansible probe uses.
type Runner interface {
	WriteInventory(file string, groups ...playbook.Group) error
	ReadInventory(file string) ([]playbook.Group, error)
	RunModule(ctx context.Context, inventory, hostPattern, module, moduleArgs string) (*playbook.ModuleResult, error)
	RunPlaybook(ctx context.Context, playbook, inventory, limit, extraVars string) (*playbook.PlaybookResult, error)
	ClusterFile(name string) string
}

var _ Runner = &playbook.Manager{}

// AnsibleProbe probes hosts with the setup and site_facts modules. Every
// host it is asked about is added to the all group of the default inventory.
type AnsibleProbe struct {
	runner Runner

	mu    sync.Mutex
	hosts []string
}

var _ HostProbe = &AnsibleProbe{}

// NewAnsibleProbe starts from the hosts a previous run left in the default
// inventory, so they are kept when the inventory is rewritten.
func NewAnsibleProbe(runner Runner) (*AnsibleProbe, error) {
	p := &AnsibleProbe{runner: runner}
	groups, err := runner.ReadInventory(config.DefaultInventory)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Name == config.AllHostsGroup {
			p.hosts = append(p.hosts, g.Hosts...)
		}
	}
	logger.Debugf("loaded %d hosts from the default inventory", len(p.hosts))
	return p, nil
}

// AddHosts adds hosts to the default inventory, rewriting it if anything changed.
func (p *AnsibleProbe) AddHosts(hosts ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	merged := utils.AppendUnique(append([]string(nil), p.hosts...), hosts...)
	if len(merged) == len(p.hosts) {
		return nil
	}
	if err := p.runner.WriteInventory(config.DefaultInventory, playbook.Group{Name: config.AllHostsGroup, Hosts: merged}); err != nil {
		return err
	}
	p.hosts = merged
	return nil
}

func (p *AnsibleProbe) Probe(ctx context.Context, host string) Outcome {
	if err := p.AddHosts(host); err != nil {
		return Outcome{State: ExecutionFailed, Reason: err.Error()}
	}

	res, err := p.runner.RunModule(ctx, config.DefaultInventory, host, config.SetupModule, "")
	if err != nil {
		logger.Warningf("setup on %s failed: %v", host, err)
		return Outcome{State: ExecutionFailed, Reason: err.Error()}
	}

	for h, r := range res.Dark {
		logger.Infof("host %s is unreachable: %s", h, r.Msg())
		return Outcome{State: Unreachable, Reason: reasonOf(r)}
	}
	for _, r := range res.Contacted {
		switch {
		case r.Has("failed"):
			return Outcome{State: ExecutionFailed, Reason: reasonOf(r)}
		case r.Has("ansible_facts"):
			facts, err := parseSystemFacts(r["ansible_facts"])
			if err != nil {
				return Outcome{State: ExecutionFailed, Reason: err.Error()}
			}
			return Outcome{State: Contacted, Facts: facts}
		default:
			return Outcome{State: ExecutionFailed, Reason: rawResult(r)}
		}
	}
	return Outcome{State: ExecutionFailed, Reason: "no result for host " + host}
}

func (p *AnsibleProbe) ProbeProductFacts(ctx context.Context, host string) (*ProductFacts, error) {
	res, err := p.runner.RunModule(ctx, config.DefaultInventory, host, config.SiteFactsModule, "")
	if err != nil {
		return nil, err
	}
	for h, r := range res.Dark {
		return nil, errors.Errorf("dark host %s: %s", h, reasonOf(r))
	}
	for _, r := range res.Contacted {
		if r.Has("failed") {
			return nil, errors.Errorf("run_module failure: %s", r.Msg())
		}
		if !r.Has("ansible_facts") {
			return nil, errors.Errorf("run_module failure: %s", rawResult(r))
		}
		return parseProductFacts(r["ansible_facts"])
	}
	return nil, errors.Errorf("Unknown error, no dark or contacted hosts for %s", host)
}

func (p *AnsibleProbe) FetchConfig(ctx context.Context, host string) (string, error) {
	res, err := p.runner.RunPlaybook(ctx, config.GetInfoPlaybook, config.DefaultInventory, host, "")
	if err != nil {
		return "", err
	}
	if res.RC != 0 {
		return "", &FetchError{Playbook: config.GetInfoPlaybook, RC: res.RC, Stdout: res.Stdout, Stderr: res.Stderr}
	}
	return p.runner.ClusterFile(config.ProductConfig), nil
}

func reasonOf(r playbook.HostResult) string {
	if msg := r.Msg(); msg != "" {
		return msg
	}
	return rawResult(r)
}

func rawResult(r playbook.HostResult) string {
	s, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(r)
	if err != nil {
		return "unreadable module result"
	}
	return s
}
