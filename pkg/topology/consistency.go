package topology

import (
	"fmt"

	v1 "github.com/infinidb/emtools/api/v1"
)

// InconsistencyError reports two hosts that disagree on a cluster wide fact.
type InconsistencyError struct {
	// What names the fact in plural, e.g. "distributions".
	What   string
	First  string
	Second string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("Multiple %s: %s and %s", e.What, e.First, e.Second)
}

// Accumulator folds per-host facts into cluster wide facts.
//
// OS family and home directory must agree across hosts. Every other fact
// keeps the first non-empty value seen and ignores later ones.
type Accumulator struct {
	Valid  bool
	Reason string

	OSFamily           string
	HomeDir            string
	GlusterVersion     string
	HadoopVersion      string
	InfiniDBVersion    string
	InfiniDBInstallDir string
	InfiniDBUser       string
	DeploymentCode     string
	StorageType        string
	SystemName         string
	Port3306Available  bool

	// Inspected counts the hosts passed to CheckAndMerge.
	Inspected int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{Valid: true, Port3306Available: true}
}

type rule func(a *Accumulator, info *v1.InstanceInfo) error

// rules run in order and the first failure stops the rest for that host
var rules = []rule{
	func(a *Accumulator, info *v1.InstanceInfo) error {
		if a.OSFamily == "" {
			a.OSFamily = info.OSFamily
		} else if a.OSFamily != info.OSFamily {
			return &InconsistencyError{What: "distributions", First: a.OSFamily, Second: info.OSFamily}
		}
		return nil
	},
	func(a *Accumulator, info *v1.InstanceInfo) error {
		if a.HomeDir == "" {
			a.HomeDir = info.HomeDir
		} else if a.HomeDir != info.HomeDir {
			return &InconsistencyError{What: "home directories", First: a.HomeDir, Second: info.HomeDir}
		}
		return nil
	},
}

// CheckAndMerge checks info against the facts accepted so far and merges it.
// On a conflict the accumulator becomes invalid, keeps the first reason it
// ever recorded and returns the conflict; the permissive facts of info are
// merged either way.
func (a *Accumulator) CheckAndMerge(info *v1.InstanceInfo) error {
	a.Inspected++

	var conflict error
	for _, r := range rules {
		if conflict = r(a, info); conflict != nil {
			break
		}
	}
	if conflict != nil {
		a.Valid = false
		if a.Reason == "" {
			a.Reason = conflict.Error()
		}
	}

	firstNonEmpty(&a.GlusterVersion, info.GlusterVersion)
	firstNonEmpty(&a.HadoopVersion, info.HadoopVersion)
	if a.InfiniDBVersion == "" && info.InfiniDBVersion != "" {
		a.InfiniDBVersion = info.InfiniDBVersion
		a.InfiniDBInstallDir = info.InfiniDBInstallDir
		a.InfiniDBUser = info.InfiniDBUser
	}
	firstNonEmpty(&a.DeploymentCode, info.DeploymentType)
	firstNonEmpty(&a.StorageType, info.StorageType)
	firstNonEmpty(&a.SystemName, info.SystemName)

	if !info.Port3306Available {
		a.Port3306Available = false
	}
	return conflict
}

func firstNonEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
