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

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// upstreamMessages are the client facing messages per failed stage. Causes
// are logged, never returned.
var upstreamMessages = map[model.Stage]string{
	model.StageCache:    "Cache write failed",
	model.StageStore:    "Bulk insert failed",
	model.StageVideo:    "Database insertion failed",
	model.StageStorage:  "Failed to retrieve file from storage",
	model.StageDispatch: "Failed to dispatch video for analysis",
}

// writeError maps the error taxonomy onto a status code and a JSON body.
func writeError(c *gin.Context, err error) {
	var validation *model.ValidationError
	var auth *model.AuthError
	var notFound *model.NotFoundError
	var upstream *model.UpstreamWriteError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &auth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &upstream):
		msg, ok := upstreamMessages[upstream.Stage]
		if !ok {
			msg = "Internal Server Error"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "stage": string(upstream.Stage)})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
