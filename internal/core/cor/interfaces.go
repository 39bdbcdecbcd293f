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

// Package cor is a small chain of responsibility engine. Every pipeline in the
// service (frame ingestion, media intake, Pub/Sub frame results) is a Chain of
// Commands sharing one Context. A chain runs its commands in order, gives each
// its own trace span and stops at the first recorded error.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the default key for the primary input of a command. The chain
	// fills it with the previous command's CtxOut.
	CtxIn = "__IN__"
	// CtxOut is the default key a command writes its primary output to.
	CtxOut = "__OUT__"

	// MeterName namespaces every counter created by commands.
	MeterName = "github.com/TheSuspect9702/emotion-flow-api"
)

// Context is the state shared by the commands of one pipeline execution.
type Context interface {
	// SetContext sets the Go context used for cancellation and tracing.
	SetContext(context context.Context)

	// GetContext returns the Go context.
	GetContext() context.Context

	// Add stores a value and returns the Context for chaining.
	Add(key string, value any) Context

	// AddError records an error under the name of the command that raised it.
	AddError(key string, err error)

	// GetErrors returns every recorded error keyed by command name.
	GetErrors() map[string]error

	// GetError returns the first recorded error, or nil.
	GetError() error

	Get(key string) any

	Remove(key string)

	HasErrors() bool

	// AddTempFile registers a local file to delete on Close.
	AddTempFile(file string)

	GetTempFiles() []string

	// Close removes the registered temp files. Defer it right after creating
	// the context.
	Close()
}

type Executable interface {
	Execute(context Context)
}

// Command is one step of a pipeline.
type Command interface {
	Executable

	GetName() string

	// GetInputParam is the context key the command reads its input from.
	GetInputParam() string

	// GetOutputParam is the context key the command writes its output to.
	GetOutputParam() string

	// IsExecutable is checked by the chain before Execute. A command that is
	// not executable fails the chain.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer

	GetMeter() metric.Meter

	GetSuccessCounter() metric.Int64Counter

	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command that runs other commands in sequence.
type Chain interface {
	Command

	// ContinueOnFailure keeps the chain running after a command records an error.
	ContinueOnFailure(bool) Chain

	AddCommand(command Command) Chain
}
