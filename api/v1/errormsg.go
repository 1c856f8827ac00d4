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
	"fmt"
)

// ErrorMsg is returned instead of a reply when a request fails as a whole.
type ErrorMsg struct {
	Failed bool   `json:"failed"`
	Msg    string `json:"msg"`
	Cmd    string `json:"cmd,omitempty"`
	RC     *int   `json:"rc,omitempty"`
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}

// NewErrorMsg builds an ErrorMsg from err. Command failures carried by err
// through the CommandError interface also fill in the command details.
func NewErrorMsg(err error) *ErrorMsg {
	m := &ErrorMsg{Failed: true, Msg: err.Error()}
	if ce, ok := err.(CommandError); ok {
		rc := ce.ExitCode()
		m.Cmd = ce.Command()
		m.RC = &rc
		m.Stdout = ce.Output()
		m.Stderr = ce.ErrorOutput()
	}
	return m
}

// CommandError is implemented by errors that describe a failed local command.
type CommandError interface {
	error
	Command() string
	ExitCode() int
	Output() string
	ErrorOutput() string
}

func (m *ErrorMsg) Error() string {
	if m.Cmd == "" {
		return m.Msg
	}
	return fmt.Sprintf("%s (cmd: %s)", m.Msg, m.Cmd)
}

// Encode serializes the message.
func (m *ErrorMsg) Encode() ([]byte, error) {
	m.Failed = true
	return Marshal(m)
}
