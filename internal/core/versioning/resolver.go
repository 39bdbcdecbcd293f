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

// Package versioning assigns human friendly `_vN` titles to uploads that share
// a base name with titles already in the store.
//
// A candidate title counts as a collision only when it has one of two shapes,
// compared case-insensitively:
//
//	<base><ext>        version 1
//	<base>_v<N><ext>   version N (ASCII digits)
//
// Everything else sharing the prefix is ignored.
package versioning

import (
	"math"
	"strconv"
	"strings"
)

// FallbackTitle replaces an empty original name.
const FallbackTitle = "untitled_video"

const versionMarker = "_v"

// SplitName splits a file name at its last '.' into base and extension. The
// extension keeps its leading dot and is empty when there is no dot.
func SplitName(name string) (base string, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// BaseName returns the prefix callers use to look up candidate titles.
func BaseName(originalName string) string {
	if originalName == "" {
		originalName = FallbackTitle
	}
	base, _ := SplitName(originalName)
	return base
}

// Resolve returns originalName when no candidate collides with it, otherwise
// `<base>_v<max+1><ext>` where max is the highest version among colliding
// candidates. It is a pure function of its inputs; two concurrent callers
// holding the same candidate snapshot get the same answer.
func Resolve(originalName string, candidates []string) string {
	if originalName == "" {
		originalName = FallbackTitle
	}
	base, ext := SplitName(originalName)

	found := false
	maxVersion := 0
	for _, candidate := range candidates {
		version, ok := parseVersion(candidate, base, ext)
		if !ok {
			continue
		}
		found = true
		if version > maxVersion {
			maxVersion = version
		}
	}

	if !found {
		return originalName
	}
	return base + versionMarker + strconv.Itoa(maxVersion+1) + ext
}

// parseVersion matches title against the two accepted shapes for base and ext.
func parseVersion(title, base, ext string) (int, bool) {
	if len(title) < len(base)+len(ext) {
		return 0, false
	}
	if !strings.EqualFold(title[:len(base)], base) || !strings.EqualFold(title[len(title)-len(ext):], ext) {
		return 0, false
	}

	middle := title[len(base) : len(title)-len(ext)]
	if middle == "" {
		return 1, true
	}
	if len(middle) <= len(versionMarker) || !strings.EqualFold(middle[:len(versionMarker)], versionMarker) {
		return 0, false
	}

	digits := middle[len(versionMarker):]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	// Out of range versions cannot be incremented, so they do not count.
	version, err := strconv.Atoi(digits)
	if err != nil || version == math.MaxInt {
		return 0, false
	}
	return version, true
}
