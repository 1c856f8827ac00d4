package emtools

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/exp/slices"

	v1 "github.com/infinidb/emtools/api/v1"
	"github.com/infinidb/emtools/pkg/utils"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed).Add(color.Bold)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// renderText prints a human readable summary of reply.
func renderText(w io.Writer, reply *v1.FactReply) {
	ci := reply.ClusterInfo
	bold.Fprintf(w, "Cluster %s: ", ci.Name)
	if ci.Valid {
		green.Fprintln(w, "valid")
	} else {
		red.Fprintf(w, "invalid (%s)\n", ci.Reason)
	}
	field(w, "os family", ci.OSFamily)
	field(w, "home dir", ci.HomeDir)
	field(w, "user", ci.InfiniDBUser)
	field(w, "InfiniDB", ci.InfiniDBVersion)
	field(w, "install dir", ci.InfiniDBInstallDir)
	field(w, "deployment", ci.DeploymentType)
	field(w, "storage", ci.StorageType)
	field(w, "primary PM", ci.PrimaryPM)
	field(w, "secondary PM", ci.SecondaryPM)
	field(w, "primary UM", ci.PrimaryUM)

	bold.Fprintf(w, "\nHosts (%d)\n", len(reply.DiscoveryOrder))
	for _, key := range reply.DiscoveryOrder {
		info := reply.InstanceInfo[key]
		if !info.Valid {
			red.Fprintf(w, "  x %s", key)
			fmt.Fprintf(w, ": %s\n", info.Reason)
			continue
		}
		green.Fprintf(w, "  + %s", key)
		fmt.Fprintf(w, " %s\n", hostDetails(info))
	}

	if len(reply.RoleInfo) == 0 {
		return
	}
	bold.Fprintln(w, "\nRoles")
	roles := make([]string, 0, len(reply.RoleInfo))
	for role := range reply.RoleInfo {
		roles = append(roles, role)
	}
	slices.SortFunc(roles, compareRoles)
	for _, role := range roles {
		cyan.Fprintf(w, "  %-5s", role)
		fmt.Fprintf(w, " %s\n", reply.RoleInfo[role])
	}
}

func field(w io.Writer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %-13s %s\n", name+":", value)
}

func hostDetails(info *v1.InstanceInfo) string {
	var parts []string
	if info.IPAddress != "" {
		parts = append(parts, "("+info.IPAddress+")")
	}
	if info.OSFamily != "" {
		parts = append(parts, info.OSFamily)
	}
	if info.PythonVersion != "" {
		parts = append(parts, "python "+info.PythonVersion)
	}
	if info.InfiniDBVersion != "" {
		parts = append(parts, "InfiniDB "+info.InfiniDBVersion)
	}
	if !info.Sudo {
		parts = append(parts, yellow.Sprint("no sudo"))
	}
	if !info.Port3306Available {
		parts = append(parts, yellow.Sprint("port 3306 in use"))
	}
	return strings.Join(parts, ", ")
}

// compareRoles orders roles by kind and then by module number, so pm2
// sorts before pm10.
func compareRoles(a, b string) int {
	ak, an := splitRole(a)
	bk, bn := splitRole(b)
	if ak != bk {
		return strings.Compare(ak, bk)
	}
	return an - bn
}

func splitRole(role string) (string, int) {
	i := strings.IndexFunc(role, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return role, 0
	}
	n, _ := utils.Str2Int(role[i:])
	return role[:i], n
}
