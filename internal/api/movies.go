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
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const (
	FileField             = "file"
	OriginalFilenameField = "originalFilename"

	sniffLength = 261
)

// MovieRouter registers upload intake and the video list.
func MovieRouter(r *gin.RouterGroup, deps *Dependencies) {
	r.POST("/movie", func(c *gin.Context) {
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			uploadStream(c, deps)
			return
		}

		req := &model.UploadRequest{}
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing filePath or originalFilename in request body"})
			return
		}
		out, err := deps.Upload.IntakeReference(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/movies", func(c *gin.Context) {
		out, err := deps.Media.ListVideos(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
}

func uploadStream(c *gin.Context, deps *Dependencies) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, deps.MaxUploadBytes)

	header, err := c.FormFile(FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file in multipart body"})
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	contentType, err := sniffMedia(file, header)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := deps.Upload.IntakeStream(c.Request.Context(), header.Filename, c.PostForm(OriginalFilenameField), contentType, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// sniffMedia rejects uploads whose header identifies a known non media kind.
// Unrecognised content is accepted with the content type the client sent.
func sniffMedia(file multipart.File, header *multipart.FileHeader) (string, error) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	kind, _ := filetype.Match(head[:n])
	if kind == filetype.Unknown {
		return header.Header.Get("Content-Type"), nil
	}
	if kind.MIME.Type != "video" && kind.MIME.Type != "audio" {
		return "", &model.ValidationError{Field: FileField, Message: "Unsupported media type " + kind.MIME.Value}
	}
	return kind.MIME.Value, nil
}
