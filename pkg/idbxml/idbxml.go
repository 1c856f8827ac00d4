package idbxml

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"
)

var logger = capnslog.NewPackageLogger("github.com/infinidb/emtools", "idbxml")

const (
	moduleSection = "SystemModuleConfig"

	// module type suffixes used in SystemModuleConfig tag names
	pmModuleType = 3
	umModuleType = 2
)

// RoleAddress is one role assignment read from the installation configuration.
type RoleAddress struct {
	Role      string
	IPAddress string
	Hostname  string
}

type node struct {
	XMLName xml.Name
	Content string `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

func (n *node) child(name string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *node) text() string {
	return strings.TrimSpace(n.Content)
}

// Document is a parsed Calpont.xml.
type Document struct {
	path string
	root node
}

// Parse reads and parses the configuration file at path.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return ParseBytes(path, data)
}

// ParseBytes parses configuration content; path is only used in messages.
func ParseBytes(path string, data []byte) (*Document, error) {
	doc := &Document{path: path}
	if err := xml.Unmarshal(data, &doc.root); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return doc, nil
}

// Roles returns every PM role followed by every UM role.
func (d *Document) Roles() ([]RoleAddress, error) {
	pms, err := d.modules("pm", pmModuleType)
	if err != nil {
		return nil, err
	}
	ums, err := d.modules("um", umModuleType)
	if err != nil {
		return nil, err
	}
	return append(pms, ums...), nil
}

func (d *Document) modules(prefix string, moduleType int) ([]RoleAddress, error) {
	section := d.root.child(moduleSection)
	if section == nil {
		return nil, errors.Errorf("%s has no %s section", d.path, moduleSection)
	}

	countTag := fmt.Sprintf("ModuleCount%d", moduleType)
	countNode := section.child(countTag)
	if countNode == nil {
		return nil, errors.Errorf("%s has no %s/%s", d.path, moduleSection, countTag)
	}
	count, err := strconv.Atoi(countNode.text())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s in %s", countTag, d.path)
	}

	roles := make([]RoleAddress, 0, count)
	for i := 1; i <= count; i++ {
		ipTag := fmt.Sprintf("ModuleIPAddr%d-1-%d", i, moduleType)
		ipNode := section.child(ipTag)
		if ipNode == nil || ipNode.text() == "" {
			return nil, errors.Errorf("%s has no %s/%s", d.path, moduleSection, ipTag)
		}
		hostname := ""
		if hostNode := section.child(fmt.Sprintf("ModuleHostName%d-1-%d", i, moduleType)); hostNode != nil {
			hostname = hostNode.text()
		}
		roles = append(roles, RoleAddress{
			Role:      fmt.Sprintf("%s%d", prefix, i),
			IPAddress: ipNode.text(),
			Hostname:  hostname,
		})
	}
	return roles, nil
}

// Parameter returns the value of name in section, or "" when either is absent.
func (d *Document) Parameter(section, name string) string {
	s := d.root.child(section)
	if s == nil {
		return ""
	}
	v := s.child(name)
	if v == nil {
		return ""
	}
	return v.text()
}

// FileResolver reads roles and parameters from configuration files on disk.
type FileResolver struct{}

// ResolveRoles returns the role table of the configuration file at path.
func (FileResolver) ResolveRoles(path string) ([]RoleAddress, error) {
	doc, err := Parse(path)
	if err != nil {
		return nil, err
	}
	roles, err := doc.Roles()
	if err != nil {
		return nil, err
	}
	logger.Infof("found %d roles in %s", len(roles), path)
	return roles, nil
}

// LookupParameter returns a named parameter of the configuration file at path.
func (FileResolver) LookupParameter(path, section, name string) (string, error) {
	doc, err := Parse(path)
	if err != nil {
		return "", err
	}
	return doc.Parameter(section, name), nil
}
