package probe

import (
	"context"
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinidb/emtools/pkg/playbook"
)

type fakeRunner struct {
	inventories [][]playbook.Group
	modules     map[string]*playbook.ModuleResult
	moduleErr   error
	playbook    *playbook.PlaybookResult
	limits      []string
	readErr     error
}

func (f *fakeRunner) WriteInventory(file string, groups ...playbook.Group) error {
	f.inventories = append(f.inventories, groups)
	return nil
}

func (f *fakeRunner) ReadInventory(file string) ([]playbook.Group, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.inventories) == 0 {
		return nil, errors.Wrapf(fs.ErrNotExist, "failed to read inventory %s", file)
	}
	return f.inventories[len(f.inventories)-1], nil
}

func newTestProbe(t *testing.T, f *fakeRunner) *AnsibleProbe {
	t.Helper()
	p, err := NewAnsibleProbe(f)
	require.NoError(t, err)
	return p
}

func (f *fakeRunner) RunModule(_ context.Context, inventory, hostPattern, module, moduleArgs string) (*playbook.ModuleResult, error) {
	if f.moduleErr != nil {
		return nil, f.moduleErr
	}
	return f.modules[module+"/"+hostPattern], nil
}

func (f *fakeRunner) RunPlaybook(_ context.Context, pb, inventory, limit, extraVars string) (*playbook.PlaybookResult, error) {
	f.limits = append(f.limits, limit)
	return f.playbook, nil
}

func (f *fakeRunner) ClusterFile(name string) string {
	return "/clusters/c1/cluster_files/" + name
}

func contacted(host string, r playbook.HostResult) *playbook.ModuleResult {
	return &playbook.ModuleResult{Contacted: map[string]playbook.HostResult{host: r}, Dark: map[string]playbook.HostResult{}}
}

func TestProbeContacted(t *testing.T) {
	f := &fakeRunner{modules: map[string]*playbook.ModuleResult{
		"setup/srvr1": contacted("srvr1", playbook.HostResult{"ansible_facts": map[string]interface{}{
			"ansible_fqdn":               "srvr1.example.com",
			"ansible_hostname":           "srvr1",
			"ansible_all_ipv4_addresses": []interface{}{"10.0.0.1", "192.168.1.1"},
			"ansible_distribution":       "CentOS",
			"ansible_python_version":     "2.6.6",
			"ansible_processor_cores":    float64(2),
			"ansible_memtotal_mb":        float64(7872),
		}}),
	}}
	p := newTestProbe(t, f)

	out := p.Probe(context.Background(), "srvr1")
	require.Equal(t, Contacted, out.State, out.Reason)
	assert.Equal(t, "srvr1.example.com", out.Facts.FQDN)
	assert.Equal(t, "srvr1", out.Facts.Hostname)
	assert.Equal(t, "10.0.0.1", out.Facts.IPAddress())
	assert.Equal(t, "CentOS", out.Facts.OSFamily)
	assert.Equal(t, 2, out.Facts.ProcessorCount)
	assert.Equal(t, 7872, out.Facts.MemoryMB)
	assert.Nil(t, out.Facts.SwapMB)

	// the host is written to the inventory once
	p.Probe(context.Background(), "srvr1")
	require.Len(t, f.inventories, 1)
	assert.Equal(t, []playbook.Group{{Name: "all", Hosts: []string{"srvr1"}}}, f.inventories[0])
}

func TestNewAnsibleProbeKeepsInventoryHosts(t *testing.T) {
	f := &fakeRunner{
		inventories: [][]playbook.Group{{
			{Name: "all", Hosts: []string{"old1", "old2"}},
			{Name: "pm", Hosts: []string{"old1"}},
		}},
		modules: map[string]*playbook.ModuleResult{
			"setup/old2": contacted("old2", playbook.HostResult{"failed": true, "msg": "boom"}),
			"setup/new1": contacted("new1", playbook.HostResult{"failed": true, "msg": "boom"}),
		},
	}
	p := newTestProbe(t, f)

	p.Probe(context.Background(), "old2")
	require.Len(t, f.inventories, 1)

	p.Probe(context.Background(), "new1")
	require.Len(t, f.inventories, 2)
	assert.Equal(t, []playbook.Group{{Name: "all", Hosts: []string{"old1", "old2", "new1"}}}, f.inventories[1])
}

func TestNewAnsibleProbeInventoryError(t *testing.T) {
	_, err := NewAnsibleProbe(&fakeRunner{readErr: errors.New("failed to parse inventory")})
	assert.Error(t, err)
}

func TestProbeClassification(t *testing.T) {
	tests := []struct {
		name   string
		result *playbook.ModuleResult
		state  State
		reason string
	}{
		{
			name: "unreachable",
			result: &playbook.ModuleResult{Dark: map[string]playbook.HostResult{
				"h": {"unreachable": true, "msg": "SSH encountered an unknown error"},
			}},
			state:  Unreachable,
			reason: "SSH encountered an unknown error",
		},
		{
			name:   "failed",
			result: contacted("h", playbook.HostResult{"failed": true, "msg": "python not found"}),
			state:  ExecutionFailed,
			reason: "python not found",
		},
		{
			name:   "unknown",
			result: contacted("h", playbook.HostResult{"changed": false}),
			state:  ExecutionFailed,
			reason: `{"changed":false}`,
		},
		{
			name:   "no fqdn",
			result: contacted("h", playbook.HostResult{"ansible_facts": map[string]interface{}{}}),
			state:  ExecutionFailed,
			reason: "setup did not report ansible_fqdn",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProbe(t, &fakeRunner{modules: map[string]*playbook.ModuleResult{"setup/h": tt.result}})
			out := p.Probe(context.Background(), "h")
			assert.Equal(t, tt.state, out.State)
			assert.Equal(t, tt.reason, out.Reason)
			assert.Nil(t, out.Facts)
		})
	}
}

func TestProbeRunError(t *testing.T) {
	p := newTestProbe(t, &fakeRunner{moduleErr: &playbook.RunError{Msg: "no json output from ansible - likely no hosts matched host_pattern"}})
	out := p.Probe(context.Background(), "h")
	assert.Equal(t, ExecutionFailed, out.State)
	assert.Equal(t, "no json output from ansible - likely no hosts matched host_pattern", out.Reason)
}

func TestProbeProductFacts(t *testing.T) {
	f := &fakeRunner{modules: map[string]*playbook.ModuleResult{
		"site_facts/srvr1": contacted("srvr1", playbook.HostResult{"ansible_facts": map[string]interface{}{
			"homedir":              "/root",
			"sudo":                 true,
			"gluster_version":      "",
			"hadoop_version":       "2.0.0",
			"pdsh_version":         "2.29",
			"infinidb_version":     "4.0.1-1",
			"infinidb_installdir":  "/usr/local/Calpont",
			"infinidb_user":        "root",
			"collectd_version":     "5.4",
			"python-stack_version": "",
			"graphite_version":     "",
			"tools_version":        "",
			"port3306available":    "False",
		}}),
		"site_facts/srvr2": contacted("srvr2", playbook.HostResult{"failed": true, "msg": "boom"}),
	}}
	p := newTestProbe(t, f)

	facts, err := p.ProbeProductFacts(context.Background(), "srvr1")
	require.NoError(t, err)
	assert.Equal(t, &ProductFacts{
		HomeDir:            "/root",
		Sudo:               true,
		HadoopVersion:      "2.0.0",
		PdshVersion:        "2.29",
		InfiniDBVersion:    "4.0.1-1",
		InfiniDBInstallDir: "/usr/local/Calpont",
		InfiniDBUser:       "root",
		CollectdVersion:    "5.4",
		Port3306Available:  false,
	}, facts)

	_, err = p.ProbeProductFacts(context.Background(), "srvr2")
	assert.EqualError(t, err, "run_module failure: boom")
}

func TestFetchConfig(t *testing.T) {
	f := &fakeRunner{playbook: &playbook.PlaybookResult{RC: 0}}
	p := newTestProbe(t, f)

	path, err := p.FetchConfig(context.Background(), "srvr1")
	require.NoError(t, err)
	assert.Equal(t, "/clusters/c1/cluster_files/Calpont.xml", path)
	assert.Equal(t, []string{"srvr1"}, f.limits)

	f.playbook = &playbook.PlaybookResult{RC: 2, Stdout: "out", Stderr: "err"}
	_, err = p.FetchConfig(context.Background(), "srvr1")
	require.Error(t, err)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "Failed to run playbook getinfo.yml: rc=2, stdout=out, stderr=err", err.Error())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Contacted", Contacted.String())
	assert.Equal(t, "Unreachable", Unreachable.String())
	assert.Equal(t, "ExecutionFailed", ExecutionFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
