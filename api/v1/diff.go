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
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/pkg/errors"
)

// DiffReplies returns the JSON merge patch that turns old into new.
// An empty object means the two replies describe the same fleet.
func DiffReplies(old, new *FactReply) ([]byte, error) {
	oldData, err := json.Marshal(old)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal old reply")
	}
	newData, err := json.Marshal(new)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal new reply")
	}
	patch, err := jsonpatch.CreateMergePatch(oldData, newData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create merge patch")
	}
	return patch, nil
}

// EqualReplies reports whether two replies serialize to the same document.
func EqualReplies(a, b *FactReply) bool {
	aData, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bData, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return jsonpatch.Equal(aData, bData)
}
