package topology

import (
	"github.com/coreos/pkg/capnslog"

	v1 "github.com/infinidb/emtools/api/v1"
	"github.com/infinidb/emtools/pkg/config"
)

var logger = capnslog.NewPackageLogger("github.com/infinidb/emtools", "topology")

// Summarize folds the fact table and the role table into the cluster summary.
//
// Hosts are visited in discovery order and the visit stops at the first
// invalid host, so hosts recorded after it never contribute. A cluster with
// no contributing host is invalid. When no installation was found anywhere
// the install directory and owner are those a fresh install by
// requestedUser would use.
func Summarize(table *FactTable, roles map[string]string, requestedUser string) *v1.ClusterInfo {
	acc := NewAccumulator()
	table.Each(func(key string, info *v1.InstanceInfo) bool {
		if !info.Valid {
			logger.Debugf("summary stops at invalid host %s", key)
			return false
		}
		if err := acc.CheckAndMerge(info); err != nil {
			logger.Warningf("host %s is inconsistent with the cluster: %v", key, err)
		}
		return true
	})

	if acc.Inspected == 0 {
		acc.Valid = false
		acc.Reason = REASON_NO_VALID_HOSTS
	}

	if acc.InfiniDBVersion == "" && acc.Valid {
		acc.InfiniDBInstallDir = Choose(requestedUser == config.SuperUser,
			config.DefaultSuperUserInstallDir,
			trimString(acc.HomeDir)+"/"+config.ProductDir)
		acc.InfiniDBUser = requestedUser
	}

	return &v1.ClusterInfo{
		Valid:              acc.Valid,
		Reason:             acc.Reason,
		Name:               acc.SystemName,
		OSFamily:           acc.OSFamily,
		HomeDir:            acc.HomeDir,
		GlusterVersion:     acc.GlusterVersion,
		HadoopVersion:      acc.HadoopVersion,
		InfiniDBVersion:    acc.InfiniDBVersion,
		InfiniDBInstallDir: acc.InfiniDBInstallDir,
		InfiniDBUser:       acc.InfiniDBUser,
		EMVersion:          v1.EMVersion,
		StorageType:        acc.StorageType,
		DeploymentType:     string(classifyDeployment(acc.DeploymentCode, roles)),
		PrimaryUM:          roleOrNone(roles, ROLE_PRIMARY_UM),
		PrimaryPM:          roleOrNone(roles, ROLE_PRIMARY_PM),
		SecondaryPM:        roleOrNone(roles, ROLE_SECONDARY_PM),
		OAMServer:          "",
		Port3306Available:  acc.Port3306Available,
	}
}

// classifyDeployment prefers the installation's own code and otherwise
// infers the layout from whether any UM role exists.
func classifyDeployment(code string, roles map[string]string) v1.DeploymentType {
	if !isEmptyString(code) {
		return v1.ClassifyDeployment(code)
	}
	if len(roles) == 0 {
		return ""
	}
	for role := range roles {
		if isRoleOf(role, ROLE_UM) {
			return v1.DeploymentSeparate
		}
	}
	return v1.DeploymentCombined
}

func roleOrNone(roles map[string]string, role string) string {
	if host, ok := roles[role]; ok && host != "" {
		return host
	}
	return v1.RoleNone
}
