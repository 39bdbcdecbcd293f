// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"fmt"
	"strings"
)

const gcsScheme = "gs://"

// GCSObject is a reference to an object in Cloud Storage.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

// URI returns the gs:// form of the reference.
func (o *GCSObject) URI() string {
	return fmt.Sprintf("%s%s/%s", gcsScheme, o.Bucket, o.Name)
}

// ParseGCSURI splits `gs://bucket/object` into its parts. It reports false for
// anything else, including a URI without an object name.
func ParseGCSURI(in string) (*GCSObject, bool) {
	if !strings.HasPrefix(in, gcsScheme) {
		return nil, false
	}
	parts := strings.SplitN(strings.TrimPrefix(in, gcsScheme), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, false
	}
	return &GCSObject{Bucket: parts[0], Name: parts[1]}, true
}
