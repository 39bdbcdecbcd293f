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
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const bearerPrefix = "Bearer "

// CredentialVerifier decides whether a presented token may call a protected
// route.
type CredentialVerifier interface {
	Verify(token string) error
}

// StaticSecretVerifier accepts exactly one shared secret. With an empty
// secret every token is rejected.
type StaticSecretVerifier struct {
	secret []byte
}

// NewStaticSecretVerifier returns a verifier for secret. An empty secret
// yields a verifier that rejects everything.
func NewStaticSecretVerifier(secret string) *StaticSecretVerifier {
	return &StaticSecretVerifier{secret: []byte(secret)}
}

// Verify compares token with the secret in constant time.
//
// Outputs:
//   - error: nil on a match, otherwise a *model.AuthError.
func (v *StaticSecretVerifier) Verify(token string) error {
	if len(v.secret) == 0 {
		return &model.AuthError{Reason: "no ingestion secret configured"}
	}
	if subtle.ConstantTimeCompare([]byte(token), v.secret) != 1 {
		return &model.AuthError{Reason: "token mismatch"}
	}
	return nil
}

// BearerToken returns the Authorization header with a leading "Bearer "
// removed. A header without the prefix is returned unchanged.
func BearerToken(header string) string {
	return strings.TrimPrefix(header, bearerPrefix)
}

// RequireBearer rejects the request with 401 unless the verifier accepts the
// bearer token.
func RequireBearer(verifier CredentialVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := verifier.Verify(BearerToken(c.GetHeader("Authorization"))); err != nil {
			slog.WarnContext(c.Request.Context(), "rejected ingest request", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
