package v1

// DeploymentType classifies how the roles of a cluster are laid out on hosts.
type DeploymentType string

const (
	// DeploymentCombined means every host runs both the UM and the PM role.
	DeploymentCombined DeploymentType = "Combined UM/PM"
	// DeploymentSeparate means UMs and PMs run on dedicated hosts.
	DeploymentSeparate DeploymentType = "Separate UM/PM"
)

// ServerTypeCombined is the ServerTypeInstall code of a combined installation.
const ServerTypeCombined = "2"

const (
	// RoleNone is reported for a role the cluster does not have.
	RoleNone = "None"
	// EMVersion is the enterprise manager version reported in every summary.
	EMVersion = "1.0"
)

// ClassifyDeployment maps a raw ServerTypeInstall code to a DeploymentType.
// An empty code yields an empty type.
func ClassifyDeployment(code string) DeploymentType {
	switch code {
	case "":
		return ""
	case ServerTypeCombined:
		return DeploymentCombined
	default:
		return DeploymentSeparate
	}
}
