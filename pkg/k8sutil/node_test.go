package k8sutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func node(name string, labels map[string]string, addrs ...v1.NodeAddress) *v1.Node {
	return &v1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels},
		Status: v1.NodeStatus{
			Addresses:  addrs,
			Conditions: []v1.NodeCondition{{Type: v1.NodeReady, Status: v1.ConditionTrue}},
		},
	}
}

func TestGetNodeAddresses(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		node("node-c", map[string]string{"infinidb": "pm"},
			v1.NodeAddress{Type: v1.NodeHostName, Address: "node-c.example.com"}),
		node("node-a", map[string]string{"infinidb": "pm"},
			v1.NodeAddress{Type: v1.NodeHostName, Address: "node-a.example.com"},
			v1.NodeAddress{Type: v1.NodeInternalIP, Address: "10.0.0.1"}),
		node("node-b", map[string]string{"infinidb": "um", v1.LabelHostname: "node-b-host"}),
	)

	addrs, err := GetNodeAddresses(context.Background(), clientset, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "node-b-host", "node-c.example.com"}, addrs)

	addrs, err = GetNodeAddresses(context.Background(), clientset, "infinidb=pm")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "node-c.example.com"}, addrs)
}

func TestGetNodeAddressFallsBackToName(t *testing.T) {
	assert.Equal(t, "node-x", GetNodeAddress(node("node-x", nil)))
}

func TestIsNodeReady(t *testing.T) {
	n := node("n", nil)
	assert.True(t, isNodeReady(n))
	n.Status.Conditions[0].Status = v1.ConditionFalse
	assert.False(t, isNodeReady(n))
	n.Status.Conditions = nil
	assert.False(t, isNodeReady(n))
}

func TestGetLabelSelector(t *testing.T) {
	assert.Equal(t, "", GetLabelSelector(nil, " "))
	assert.Equal(t, "a=1,b=2", GetLabelSelector(map[string]string{"b": "2", "a": "1"}, ""))
	assert.Equal(t, "tier in (db),a=1", GetLabelSelector(map[string]string{"a": "1"}, "tier in (db)"))
}
