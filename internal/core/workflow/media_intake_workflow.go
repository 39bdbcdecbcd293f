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

package workflow

import (
	"github.com/TheSuspect9702/emotion-flow-api/internal/analysis"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/commands"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/media"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
)

const mediaTempPrefix = "emotion-flow-media-"

// MediaIntakeWorkflow takes an uploaded object, already in media storage and
// described by a *model.UploadRequest in commands.ParamUpload, through title
// resolution, video insert, a local copy and dispatch to the analysis worker.
// The video row stays in place when a later step fails.
type MediaIntakeWorkflow struct {
	cor.BaseCommand
	videos     store.VideoStore
	media      media.Store
	dispatcher analysis.Dispatcher
	chain      cor.Chain
}

// NewMediaIntakeWorkflow builds the upload chain.
//
// Inputs:
//   - videos: The store titles are resolved against and rows are created in.
//   - mediaStore: Media storage holding the uploaded object.
//   - dispatcher: The analysis worker client.
//
// Outputs:
//   - *MediaIntakeWorkflow: The workflow. It reads commands.ParamUpload.
func NewMediaIntakeWorkflow(videos store.VideoStore, mediaStore media.Store, dispatcher analysis.Dispatcher) *MediaIntakeWorkflow {
	out := &MediaIntakeWorkflow{
		BaseCommand: *cor.NewBaseCommand("media-intake-workflow"),
		videos:      videos,
		media:       mediaStore,
		dispatcher:  dispatcher,
	}
	out.InputParamName = commands.ParamUpload
	out.initializeChain()
	return out
}

// Execute resolves the title, inserts the video, copies the media locally and
// dispatches it. The video row is kept when a later step fails.
func (w *MediaIntakeWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *MediaIntakeWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewResolveTitle("resolve-title", w.videos))
	out.AddCommand(commands.NewVideoInsert("insert-video", w.videos))
	out.AddCommand(commands.NewMediaToTempFile("media-to-temp-file", w.media, mediaTempPrefix))
	out.AddCommand(commands.NewMediaDispatch("dispatch-to-worker", w.dispatcher, w.media))
	w.chain = out
}
