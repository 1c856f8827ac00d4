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
	jsoniter "github.com/json-iterator/go"
)

// json is the codec used for every message of this package.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes a message with a four space indent, which is the layout
// the console and the enterprise manager server expect.
func Marshal(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}
