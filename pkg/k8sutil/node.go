package k8sutil

import (
	"context"
	"sort"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

var logger = capnslog.NewPackageLogger("github.com/infinidb/emtools", "k8sutil")

// GetNodeAddresses returns one address per node matching selector, ordered
// by node name, for use as seed hosts.
func GetNodeAddresses(ctx context.Context, clientset kubernetes.Interface, selector string) ([]string, error) {
	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list nodes with selector %q", selector)
	}

	items := nodes.Items
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	addrs := make([]string, 0, len(items))
	for i := range items {
		addr := GetNodeAddress(&items[i])
		if !isNodeReady(&items[i]) {
			logger.Warningf("node %s is not ready, probing %s anyway", items[i].Name, addr)
		}
		addrs = append(addrs, addr)
	}
	logger.Infof("found %d nodes for selector %q", len(addrs), selector)
	return addrs, nil
}

// GetNodeAddress prefers the node's InternalIP, then its Hostname address,
// then its hostname label and finally the node name.
func GetNodeAddress(node *v1.Node) string {
	for _, t := range []v1.NodeAddressType{v1.NodeInternalIP, v1.NodeHostName} {
		for _, address := range node.Status.Addresses {
			if address.Type == t && address.Address != "" {
				return address.Address
			}
		}
	}
	if hostname, err := GetNodeHostNameLabel(node); err == nil && hostname != "" {
		return hostname
	}
	return node.Name
}

func GetNodeHostNameLabel(node *v1.Node) (string, error) {
	hostname, ok := node.Labels[v1.LabelHostname]
	if !ok {
		return "", errors.New("hostname not found on the node")
	}
	return hostname, nil
}

func isNodeReady(node *v1.Node) bool {
	for _, c := range node.Status.Conditions {
		if c.Type == v1.NodeReady {
			return c.Status == v1.ConditionTrue
		}
	}
	return false
}
