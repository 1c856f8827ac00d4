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

package v1

import (
	"github.com/pkg/errors"
)

// EMComponents holds the versions of the enterprise manager components
// found on a host. An empty value means the component is not installed.
type EMComponents struct {
	Collectd    string `json:"collectd"`
	PythonStack string `json:"python-stack"`
	Graphite    string `json:"graphite"`
	Tools       string `json:"tools"`
	OAMServer   string `json:"oam-server"`
}

// InstanceInfo is the per-host record of a FactReply.
// Hosts that could not be probed carry only Valid and Reason.
type InstanceInfo struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`

	IPAddress     string `json:"ip_address,omitempty"`
	Hostname      string `json:"hostname,omitempty"`
	OSFamily      string `json:"os_family,omitempty"`
	HomeDir       string `json:"homedir,omitempty"`
	Sudo          bool   `json:"sudo"`
	PythonVersion string `json:"python_version,omitempty"`

	GlusterVersion     string `json:"gluster_version,omitempty"`
	HadoopVersion      string `json:"hadoop_version,omitempty"`
	PdshVersion        string `json:"pdsh_version,omitempty"`
	InfiniDBVersion    string `json:"infinidb_version,omitempty"`
	InfiniDBInstallDir string `json:"infinidb_installdir,omitempty"`
	InfiniDBUser       string `json:"infinidb_user,omitempty"`

	ProcessorCount  int  `json:"processor_count,omitempty"`
	MemoryAvailable int  `json:"memory_available,omitempty"`
	SwapConfigured  *int `json:"swap_configured,omitempty"`

	EMComponents *EMComponents `json:"em_components,omitempty"`

	// DeploymentType is the raw ServerTypeInstall code of the installation.
	DeploymentType string `json:"deployment_type,omitempty"`
	StorageType    string `json:"storage_type,omitempty"`
	SystemName     string `json:"system_name,omitempty"`

	Port3306Available bool `json:"port3306available"`
}

// Invalidate marks the instance invalid with the given reason.
func (i *InstanceInfo) Invalidate(reason string) {
	i.Valid = false
	i.Reason = reason
}

// ClusterInfo is the cluster level summary of a FactReply.
type ClusterInfo struct {
	Valid              bool   `json:"valid"`
	Reason             string `json:"reason"`
	Name               string `json:"name"`
	OSFamily           string `json:"os_family"`
	HomeDir            string `json:"homedir"`
	GlusterVersion     string `json:"gluster_version"`
	HadoopVersion      string `json:"hadoop_version"`
	InfiniDBVersion    string `json:"infinidb_version"`
	InfiniDBInstallDir string `json:"infinidb_installdir"`
	InfiniDBUser       string `json:"infinidb_user"`
	EMVersion          string `json:"em_version"`
	StorageType        string `json:"storage_type"`
	DeploymentType     string `json:"deployment_type"`
	PrimaryUM          string `json:"primary_um"`
	PrimaryPM          string `json:"primary_pm"`
	SecondaryPM        string `json:"secondary_pm"`
	OAMServer          string `json:"oam_server"`
	Port3306Available  bool   `json:"port3306available"`
}

// FactReply is the answer to a FactRequest.
type FactReply struct {
	ClusterInfo  *ClusterInfo             `json:"cluster_info"`
	InstanceInfo map[string]*InstanceInfo `json:"instance_info"`
	RoleInfo     map[string]string        `json:"role_info"`
	// DiscoveryOrder lists the keys of InstanceInfo in the order the hosts
	// were first recorded.
	DiscoveryOrder []string `json:"discovery_order"`
}

// Validate checks that the reply is self consistent.
func (r *FactReply) Validate() error {
	if r.ClusterInfo == nil {
		return errors.New("cluster_info is required")
	}
	if len(r.DiscoveryOrder) != len(r.InstanceInfo) {
		return errors.Errorf("discovery_order has %d entries but instance_info has %d",
			len(r.DiscoveryOrder), len(r.InstanceInfo))
	}
	for _, fqdn := range r.DiscoveryOrder {
		info, ok := r.InstanceInfo[fqdn]
		if !ok {
			return errors.Errorf("discovery_order references unknown host %q", fqdn)
		}
		if !info.Valid && info.Reason == "" {
			return errors.Errorf("invalid host %q has no reason", fqdn)
		}
	}
	return nil
}

// Encode validates and serializes the reply.
func (r *FactReply) Encode() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to validate FactReply")
	}
	return Marshal(r)
}

// DecodeFactReply parses a FactReply produced by Encode.
func DecodeFactReply(data []byte) (*FactReply, error) {
	reply := &FactReply{}
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, errors.Wrap(err, "failed to decode FactReply")
	}
	return reply, nil
}
