// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected       = errors.New("not connected to the relay")
	ErrClientClosed       = errors.New("signal client is closed")
	ErrUnexpectedResponse = errors.New("unexpected response from relay")
)

// JoinError is returned when the relay refuses a join.
type JoinError struct {
	Code    string
	Message string
}

func (e *JoinError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("join rejected: %s", e.Code)
	}
	return fmt.Sprintf("join rejected: %s: %s", e.Code, e.Message)
}
