/*


Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package discover

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/util/workqueue"

	v1 "github.com/infinidb/emtools/api/v1"
	"github.com/infinidb/emtools/pkg/config"
	"github.com/infinidb/emtools/pkg/idbxml"
	"github.com/infinidb/emtools/pkg/netutil"
	"github.com/infinidb/emtools/pkg/probe"
	"github.com/infinidb/emtools/pkg/topology"
)

const (
	reasonNoSudo             = "no passwordless sudo"
	reasonUnsupportedRuntime = "unsupported python version"
	localhost                = "localhost"
)

// RoleResolver reads the role table and named parameters of an
// installation configuration file.
type RoleResolver interface {
	ResolveRoles(path string) ([]idbxml.RoleAddress, error)
	LookupParameter(path, section, name string) (string, error)
}

var _ RoleResolver = idbxml.FileResolver{}

// Options tune a discovery Engine.
type Options struct {
	// Parallelism is the number of hosts probed at once.
	Parallelism int
	// RequireSudo invalidates hosts without passwordless sudo.
	RequireSudo bool
	// RuntimeVersions lists the accepted python major.minor versions.
	RuntimeVersions []string
}

// Engine discovers the hosts of a cluster starting from the seed hosts of
// a FactRequest. The first host found with an existing installation expands
// the host set with the members listed in its configuration.
type Engine struct {
	log      logr.Logger
	probe    probe.HostProbe
	resolver RoleResolver
	dns      netutil.Resolver
	opts     Options
}

func NewEngine(log logr.Logger, hostProbe probe.HostProbe, resolver RoleResolver, dns netutil.Resolver, opts Options) *Engine {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Engine{
		log:      log,
		probe:    hostProbe,
		resolver: resolver,
		dns:      dns,
		opts:     opts,
	}
}

// installParams are read from the configuration that expanded the run and
// stamped onto every valid host at the end of it.
type installParams struct {
	serverType  string
	storageType string
	systemName  string
}

// run is the state of one Engine.Run call.
type run struct {
	*Engine
	log logr.Logger

	worklist []string
	next     int
	queued   sets.String

	facts *topology.FactTable
	roles map[string]string
	// expanded is set once the first qualifying host has been seen,
	// whether or not its expansion succeeded
	expanded bool
	params   *installParams
	// pending holds the keys of the batch being recorded, so expansion does
	// not queue a host that was probed under another identifier
	pending sets.String
}

// hostResult is what probing one host produced, before it is recorded.
type hostResult struct {
	key  string
	info *v1.InstanceInfo
}

// Run discovers the cluster described by req. Unreachable or misconfigured
// hosts are reported in the reply; only a malformed request, an unparsable
// installation configuration or conflicting role assignments fail the run.
func (e *Engine) Run(ctx context.Context, req *v1.FactRequest) (*v1.FactReply, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		Engine: e,
		log:    e.log.WithValues("run", uuid.New().String(), "cluster", req.ClusterName),
		queued: sets.NewString(),
		facts:  topology.NewFactTable(),
		roles:  map[string]string{},
	}
	r.enqueue(req.Hostnames...)
	r.log.Info("starting discovery", "seeds", len(req.Hostnames), "parallelism", e.opts.Parallelism)

	for r.next < len(r.worklist) {
		batch := r.worklist[r.next:]
		r.next = len(r.worklist)

		results, err := r.probeBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		r.pending = sets.NewString()
		for _, res := range results {
			r.pending.Insert(res.key)
		}
		for i, host := range batch {
			if err := r.record(ctx, host, results[i]); err != nil {
				r.log.Error(err, "discovery aborted", "host", host)
				return nil, err
			}
		}
	}
	r.stampInstallParams()

	reply := &v1.FactReply{
		ClusterInfo:    topology.Summarize(r.facts, r.roles, req.SSHUser),
		InstanceInfo:   r.facts.Map(),
		RoleInfo:       r.roles,
		DiscoveryOrder: r.facts.Order(),
	}
	r.log.Info("discovery finished", "hosts", r.facts.Len(), "roles", len(r.roles),
		"valid", reply.ClusterInfo.Valid, "reason", reply.ClusterInfo.Reason)
	return reply, nil
}

func (r *run) enqueue(hosts ...string) {
	for _, h := range hosts {
		if r.queued.Has(h) {
			continue
		}
		r.queued.Insert(h)
		r.worklist = append(r.worklist, h)
	}
}

// probeBatch probes every host of batch, in parallel when configured, and
// returns the results in batch order.
func (r *run) probeBatch(ctx context.Context, batch []string) ([]hostResult, error) {
	results := make([]hostResult, len(batch))
	workqueue.ParallelizeUntil(ctx, r.opts.Parallelism, len(batch), func(i int) {
		results[i] = r.probeHost(ctx, batch[i])
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// probeHost runs both probes against host and builds its record.
func (r *run) probeHost(ctx context.Context, host string) hostResult {
	log := r.log.WithValues("host", host)

	out := r.probe.Probe(ctx, host)
	if out.State != probe.Contacted {
		log.Info("host not contacted", "state", out.State.String(), "reason", out.Reason)
		return invalid(host, out.Reason)
	}
	facts := out.Facts

	// the host answered, but emtools itself must be able to route to the name it reported
	if _, err := r.dns.LookupHost(ctx, facts.FQDN); err != nil {
		log.Info("reported FQDN does not resolve", "fqdn", facts.FQDN, "error", err.Error())
		return invalid(facts.FQDN, fmt.Sprintf("non-routable FQDN: %s", host))
	}

	product, err := r.probe.ProbeProductFacts(ctx, host)
	if err != nil {
		log.Info("product facts probe failed", "error", err.Error())
		return invalid(facts.FQDN, err.Error())
	}

	info := newInstanceInfo(facts, product)
	if reason := r.eligibility(info); reason != "" {
		info.Invalidate(reason)
	}
	log.V(1).Info("host probed", "fqdn", facts.FQDN, "valid", info.Valid, "version", info.InfiniDBVersion)
	return hostResult{key: facts.FQDN, info: info}
}

func invalid(key, reason string) hostResult {
	return hostResult{key: key, info: &v1.InstanceInfo{Valid: false, Reason: reason}}
}

func newInstanceInfo(s *probe.SystemFacts, p *probe.ProductFacts) *v1.InstanceInfo {
	return &v1.InstanceInfo{
		Valid:              true,
		IPAddress:          s.IPAddress(),
		Hostname:           s.Hostname,
		OSFamily:           s.OSFamily,
		HomeDir:            p.HomeDir,
		Sudo:               p.Sudo,
		PythonVersion:      s.PythonVersion,
		GlusterVersion:     p.GlusterVersion,
		HadoopVersion:      p.HadoopVersion,
		PdshVersion:        p.PdshVersion,
		InfiniDBVersion:    p.InfiniDBVersion,
		InfiniDBInstallDir: p.InfiniDBInstallDir,
		InfiniDBUser:       p.InfiniDBUser,
		ProcessorCount:     s.ProcessorCount,
		MemoryAvailable:    s.MemoryMB,
		SwapConfigured:     s.SwapMB,
		EMComponents: &v1.EMComponents{
			Collectd:    p.CollectdVersion,
			PythonStack: p.PythonStackVersion,
			Graphite:    p.GraphiteVersion,
			Tools:       p.ToolsVersion,
		},
		Port3306Available: p.Port3306Available,
	}
}

// eligibility returns why a contacted host cannot be managed, or "".
func (r *run) eligibility(info *v1.InstanceInfo) string {
	if r.opts.RequireSudo && !info.Sudo {
		return reasonNoSudo
	}
	if len(r.opts.RuntimeVersions) == 0 {
		return ""
	}
	have := config.RuntimeMajorMinor(info.PythonVersion)
	for _, v := range r.opts.RuntimeVersions {
		if have != "" && have == config.RuntimeMajorMinor(v) {
			return ""
		}
	}
	return reasonUnsupportedRuntime
}

// record adds the result of probing host to the fact table and expands the
// run if host is the first to qualify.
func (r *run) record(ctx context.Context, host string, res hostResult) error {
	if !r.facts.Add(res.key, res.info) {
		r.log.Info("host already recorded, keeping the first record", "host", host, "key", res.key)
		return nil
	}
	if !res.info.Valid {
		return nil
	}
	if r.expanded || !res.info.Sudo || res.info.InfiniDBVersion == "" {
		return nil
	}
	r.expanded = true
	return r.expand(ctx, host, res.key, res.info)
}

// expand reads the installation configuration of the trigger host and
// queues every cluster member not seen yet. A failure to fetch the
// configuration or to reverse resolve one of its addresses invalidates the
// trigger host and adds nothing.
func (r *run) expand(ctx context.Context, host, key string, trigger *v1.InstanceInfo) error {
	log := r.log.WithValues("host", key, "version", trigger.InfiniDBVersion)
	log.Info("existing installation found, expanding topology")

	path, err := r.probe.FetchConfig(ctx, host)
	if err != nil {
		log.Info("failed to fetch installation configuration", "error", err.Error())
		trigger.Invalidate(err.Error())
		return nil
	}

	assignments, err := r.resolver.ResolveRoles(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	params, err := r.readInstallParams(path)
	if err != nil {
		return err
	}

	resolved := make([]string, len(assignments))
	for i, a := range assignments {
		name, err := r.dns.LookupAddr(ctx, a.IPAddress)
		if err != nil {
			log.Info("role address does not resolve", "role", a.Role, "ip", a.IPAddress, "error", err.Error())
			trigger.Invalidate(fmt.Sprintf("%s contained IP address %s that does not resolve to a hostname",
				config.ProductConfig, a.IPAddress))
			return nil
		}
		if name == localhost {
			name = key
		}
		resolved[i] = name
	}

	for i, a := range assignments {
		if existing, ok := r.roles[a.Role]; ok && existing != resolved[i] {
			return &RoleConflictError{Role: a.Role, Existing: existing, Conflicting: resolved[i]}
		}
		r.roles[a.Role] = resolved[i]
		if !r.facts.Has(resolved[i]) && !r.pending.Has(resolved[i]) {
			r.enqueue(resolved[i])
		}
	}
	r.params = params
	log.Info("topology expanded", "roles", len(assignments), "pending", len(r.worklist)-r.next)
	return nil
}

func (r *run) readInstallParams(path string) (*installParams, error) {
	lookup := func(section, name string) (string, error) {
		v, err := r.resolver.LookupParameter(path, section, name)
		if err != nil {
			return "", &ConfigError{Path: path, Err: err}
		}
		return v, nil
	}

	p := &installParams{}
	var err error
	if p.serverType, err = lookup("Installation", "ServerTypeInstall"); err != nil {
		return nil, err
	}
	if p.storageType, err = lookup("Installation", "DBRootStorageType"); err != nil {
		return nil, err
	}
	if p.systemName, err = lookup("SystemConfig", "SystemName"); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *run) stampInstallParams() {
	if r.params == nil {
		return
	}
	r.facts.Each(func(_ string, info *v1.InstanceInfo) bool {
		if info.Valid {
			info.DeploymentType = r.params.serverType
			info.StorageType = r.params.storageType
			info.SystemName = r.params.systemName
		}
		return true
	})
}
