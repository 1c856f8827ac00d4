package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReply() *FactReply {
	return &FactReply{
		ClusterInfo: &ClusterInfo{
			Valid:              true,
			OSFamily:           "CentOS",
			InfiniDBInstallDir: "/usr/local/Calpont",
			InfiniDBUser:       "root",
			EMVersion:          EMVersion,
			PrimaryPM:          "srvr1.example.com",
			PrimaryUM:          RoleNone,
			SecondaryPM:        RoleNone,
			Port3306Available:  true,
		},
		InstanceInfo: map[string]*InstanceInfo{
			"srvr1.example.com": {Valid: true, OSFamily: "CentOS", HomeDir: "/root", Sudo: true, Port3306Available: true},
			"srvr2":             {Valid: false, Reason: "host unreachable"},
		},
		RoleInfo:       map[string]string{"pm1": "srvr1.example.com"},
		DiscoveryOrder: []string{"srvr1.example.com", "srvr2"},
	}
}

func TestFactReplyValidate(t *testing.T) {
	assert.NoError(t, sampleReply().Validate())

	r := sampleReply()
	r.ClusterInfo = nil
	assert.EqualError(t, r.Validate(), "cluster_info is required")

	r = sampleReply()
	r.DiscoveryOrder = []string{"srvr1.example.com", "srvr3"}
	assert.EqualError(t, r.Validate(), `discovery_order references unknown host "srvr3"`)

	r = sampleReply()
	r.InstanceInfo["srvr2"].Reason = ""
	assert.EqualError(t, r.Validate(), `invalid host "srvr2" has no reason`)
}

func TestFactReplyEncode(t *testing.T) {
	data, err := sampleReply().Encode()
	require.NoError(t, err)

	m := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &m))
	cluster := m["cluster_info"].(map[string]interface{})
	assert.Equal(t, "1.0", cluster["em_version"])
	assert.Equal(t, "None", cluster["primary_um"])
	assert.Equal(t, "", cluster["oam_server"])

	instances := m["instance_info"].(map[string]interface{})
	unreachable := instances["srvr2"].(map[string]interface{})
	assert.NotContains(t, unreachable, "os_family")
	assert.Equal(t, "host unreachable", unreachable["reason"])

	decoded, err := DecodeFactReply(data)
	require.NoError(t, err)
	assert.True(t, EqualReplies(sampleReply(), decoded))
}

func TestClassifyDeployment(t *testing.T) {
	assert.Equal(t, DeploymentCombined, ClassifyDeployment("2"))
	assert.Equal(t, DeploymentSeparate, ClassifyDeployment("1"))
	assert.Equal(t, DeploymentSeparate, ClassifyDeployment("3"))
	assert.Equal(t, DeploymentType(""), ClassifyDeployment(""))
}

func TestDiffReplies(t *testing.T) {
	patch, err := DiffReplies(sampleReply(), sampleReply())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(patch))

	changed := sampleReply()
	changed.ClusterInfo.Valid = false
	changed.ClusterInfo.Reason = "No valid hosts"
	patch, err = DiffReplies(sampleReply(), changed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cluster_info":{"valid":false,"reason":"No valid hosts"}}`, string(patch))
	assert.False(t, EqualReplies(sampleReply(), changed))
}

type fakeCommandError struct{}

func (fakeCommandError) Error() string       { return "command failed" }
func (fakeCommandError) Command() string     { return "ansible-playbook getinfo.yml" }
func (fakeCommandError) ExitCode() int       { return 2 }
func (fakeCommandError) Output() string      { return "out" }
func (fakeCommandError) ErrorOutput() string { return "err" }

func TestNewErrorMsg(t *testing.T) {
	m := NewErrorMsg(fakeCommandError{})
	assert.True(t, m.Failed)
	assert.Equal(t, "command failed", m.Msg)
	assert.Equal(t, "ansible-playbook getinfo.yml", m.Cmd)
	require.NotNil(t, m.RC)
	assert.Equal(t, 2, *m.RC)

	data, err := m.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"failed":true,"msg":"command failed","cmd":"ansible-playbook getinfo.yml","rc":2,"stdout":"out","stderr":"err"}`, string(data))
}
