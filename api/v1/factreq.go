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
	"strings"

	"emperror.dev/errors"
)

// FactRequest is sent by the client during the install-new-cluster use case
// after the user has entered a list of hostnames and access credentials.
type FactRequest struct {
	// ClusterName names the playbook directory used for this cluster.
	ClusterName string `json:"cluster_name"`
	// Hostnames are the seed host identifiers, in the order supplied.
	Hostnames []string `json:"hostnames"`
	// SSHUser is the remote account used for every host.
	SSHUser string `json:"ssh_user"`
	// SSHKey is the private key text. Exactly one of SSHKey and SSHPass is set.
	SSHKey *string `json:"ssh_key,omitempty"`
	// SSHPass is the ssh password.
	SSHPass *string `json:"ssh_pass,omitempty"`
	// SSHPort overrides the default ssh port.
	SSHPort *int `json:"ssh_port,omitempty"`
}

// DecodeFactRequest parses and validates a FactRequest.
func DecodeFactRequest(data []byte) (*FactRequest, error) {
	req := &FactRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, errors.WrapIf(err, "failed to decode FactRequest")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate reports every violation of the request's shape at once.
func (r *FactRequest) Validate() error {
	var errs []error
	if strings.TrimSpace(r.ClusterName) == "" {
		errs = append(errs, errors.New("cluster_name cannot be blank"))
	}
	if len(r.Hostnames) == 0 {
		errs = append(errs, errors.New("hostnames must contain at least one item"))
	}
	for i, h := range r.Hostnames {
		if strings.TrimSpace(h) == "" {
			errs = append(errs, errors.Errorf("hostnames[%d] cannot be blank", i))
		}
	}
	if strings.TrimSpace(r.SSHUser) == "" {
		errs = append(errs, errors.New("ssh_user cannot be blank"))
	}
	if (r.SSHKey != nil) == (r.SSHPass != nil) {
		errs = append(errs, errors.New("exactly one of ssh_key, ssh_pass must be present"))
	}
	if r.SSHPort != nil && (*r.SSHPort <= 0 || *r.SSHPort > 65535) {
		errs = append(errs, errors.Errorf("ssh_port %d is out of range", *r.SSHPort))
	}

	if err := errors.Combine(errs...); err != nil {
		return errors.WithMessage(err, "invalid FactRequest")
	}
	return nil
}

// AddHostnames appends identifiers that are not already part of the request.
func (r *FactRequest) AddHostnames(hosts ...string) {
	seen := make(map[string]bool, len(r.Hostnames))
	for _, h := range r.Hostnames {
		seen[h] = true
	}
	for _, h := range hosts {
		if seen[h] {
			continue
		}
		seen[h] = true
		r.Hostnames = append(r.Hostnames, h)
	}
}
