// Copyright 2024-2026
// SPDX-License-Identifier: Apache-2.0
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

package common

import (
	"bytes"
	"io/ioutil"

	"github.com/pierrec/lz4/v4"
)

// Compress wraps a byte slice in an lz4 frame. Cache values are written
// and read through this pair only, so the frame format is an internal
// detail of the cache.
func Compress(in []byte) ([]byte, error) {
	var frame bytes.Buffer
	zw := lz4.NewWriter(&frame)
	if _, err := zw.Write(in); err != nil {
		return nil, err
	}
	// Close flushes the final block and writes the frame footer
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return frame.Bytes(), nil
}

// Decompress reverses Compress
func Decompress(in []byte) ([]byte, error) {
	return ioutil.ReadAll(lz4.NewReader(bytes.NewReader(in)))
}
