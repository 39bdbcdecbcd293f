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

package commands

import (
	"log/slog"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/versioning"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
)

// ResolveTitle picks the next free versioned title for the upload. A failed
// title lookup does not stop the upload, it resolves against no candidates.
type ResolveTitle struct {
	cor.BaseCommand
	videos store.VideoStore
}

// NewResolveTitle builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//   - videos: The store searched for existing titles.
//
// Outputs:
//   - *ResolveTitle: The command, ready to add to a chain.
func NewResolveTitle(name string, videos store.VideoStore) *ResolveTitle {
	out := &ResolveTitle{BaseCommand: *cor.NewBaseCommand(name), videos: videos}
	out.InputParamName = ParamUpload
	return out
}

// Execute looks up titles sharing the upload's base name and stores the
// resolved title in ParamFinalTitle.
//
// Inputs:
//   - context: The chain context of the current execution.
func (c *ResolveTitle) Execute(context cor.Context) {
	upload, err := getTyped[*model.UploadRequest](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	base := versioning.BaseName(upload.OriginalFilename)
	candidates, err := c.videos.FindTitlesByPrefix(context.GetContext(), base)
	if err != nil {
		slog.WarnContext(context.GetContext(), "title lookup failed, resolving without candidates", "base", base, "error", err)
		candidates = nil
	}

	title := versioning.Resolve(upload.OriginalFilename, candidates)
	slog.InfoContext(context.GetContext(), "resolved upload title", "original", upload.OriginalFilename, "final_title", title, "candidates", len(candidates))

	c.Succeed(context)
	context.Add(ParamFinalTitle, title)
}
