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
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const ingestSuccessMessage = "bulk ingest successful"

// FrameRouter registers the authenticated ingest endpoint used by the
// analysis worker.
func FrameRouter(r *gin.RouterGroup, deps *Dependencies) {
	frame := r.Group("/frame")
	frame.Use(RequireBearer(deps.Verifier))
	{
		frame.POST("/result", func(c *gin.Context) {
			req := &model.IngestRequest{}
			if err := c.ShouldBindJSON(req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input, expected video_id and frames[]"})
				return
			}
			inserted, err := deps.Ingestion.IngestRequest(c.Request.Context(), req)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"status":          "ok",
				"inserted_frames": inserted,
				"message":         ingestSuccessMessage,
			})
		})
	}
}

// VideoRouter registers the read endpoints of a single video.
func VideoRouter(r *gin.RouterGroup, deps *Dependencies) {
	video := r.Group("/video/:videoId")
	{
		video.GET("/charts", func(c *gin.Context) {
			out, err := deps.Media.Analytics(c.Request.Context(), c.Param("videoId"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		video.GET("/frames", func(c *gin.Context) {
			limit := 0
			if raw, ok := c.GetQuery("limit"); ok {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 1 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
					return
				}
				limit = n
			}
			out, err := deps.Media.Frames(c.Request.Context(), c.Param("videoId"), limit)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
