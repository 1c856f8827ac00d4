package probe

import (
	"github.com/pkg/errors"

	"github.com/infinidb/emtools/pkg/utils"
)

func asFactMap(v interface{}) (map[string]interface{}, error) {
	if !utils.IsStringAnyMap(v) {
		return nil, errors.Errorf("ansible_facts has unexpected type %s", utils.Type(v))
	}
	return v.(map[string]interface{}), nil
}

func parseSystemFacts(v interface{}) (*SystemFacts, error) {
	m, err := asFactMap(v)
	if err != nil {
		return nil, err
	}

	f := &SystemFacts{
		FQDN:          utils.Atoa(m["ansible_fqdn"]),
		Hostname:      utils.Atoa(m["ansible_hostname"]),
		IPAddresses:   utils.Strings(m["ansible_all_ipv4_addresses"]),
		OSFamily:      utils.Atoa(m["ansible_distribution"]),
		PythonVersion: utils.Atoa(m["ansible_python_version"]),
	}
	if f.FQDN == "" {
		return nil, errors.New("setup did not report ansible_fqdn")
	}

	// some platforms report cores but not vcpus
	if n, ok := utils.All2Int(m["ansible_processor_vcpus"]); ok {
		f.ProcessorCount = n
	} else {
		f.ProcessorCount, _ = utils.All2Int(m["ansible_processor_cores"])
	}
	f.MemoryMB, _ = utils.All2Int(m["ansible_memtotal_mb"])
	if swap, ok := utils.All2Int(m["ansible_swaptotal_mb"]); ok {
		f.SwapMB = &swap
	}
	return f, nil
}

func parseProductFacts(v interface{}) (*ProductFacts, error) {
	m, err := asFactMap(v)
	if err != nil {
		return nil, err
	}
	return &ProductFacts{
		HomeDir:            utils.Atoa(m["homedir"]),
		Sudo:               utils.All2Bool(m["sudo"]),
		GlusterVersion:     utils.Atoa(m["gluster_version"]),
		HadoopVersion:      utils.Atoa(m["hadoop_version"]),
		PdshVersion:        utils.Atoa(m["pdsh_version"]),
		InfiniDBVersion:    utils.Atoa(m["infinidb_version"]),
		InfiniDBInstallDir: utils.Atoa(m["infinidb_installdir"]),
		InfiniDBUser:       utils.Atoa(m["infinidb_user"]),
		CollectdVersion:    utils.Atoa(m["collectd_version"]),
		PythonStackVersion: utils.Atoa(m["python-stack_version"]),
		GraphiteVersion:    utils.Atoa(m["graphite_version"]),
		ToolsVersion:       utils.Atoa(m["tools_version"]),
		Port3306Available:  utils.All2Bool(m["port3306available"]),
	}, nil
}
