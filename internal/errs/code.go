/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package errs provides the error taxonomy and exit-code mapping used across
// the attack, encode, report and plot subcommands.
package errs

// CodeError classifies an error the way an HTTP status code classifies a
// response: a small numeric space with a registered message per code.
type CodeError uint16

const (
	// UnknownError is the fallback code for errors with no specific classification.
	UnknownError CodeError = 0

	// ConfigError marks a configuration-time failure: bad URL, missing TLS
	// material, malformed targets. These abort before the pacer starts.
	ConfigError CodeError = 1001

	// TargetError marks a failure parsing or reading the target source.
	TargetError CodeError = 1002

	// CodecError marks a failure encoding or decoding a Result stream.
	CodecError CodeError = 1003

	// ToleranceError marks a post-attack tolerance-check failure (spec exit code 2).
	ToleranceError CodeError = 1004

	// SinkError marks a failure writing the Result stream; the attack aborts
	// immediately rather than keep generating load it cannot record.
	SinkError CodeError = 1005

	// InternalError marks a failure in the engine itself, not in user input.
	InternalError CodeError = 1006
)

// idMsg stores the default message registered per code.
var idMsg = map[CodeError]string{
	UnknownError:   "unknown error",
	ConfigError:    "invalid configuration",
	TargetError:    "invalid target source",
	CodecError:     "result stream codec error",
	ToleranceError: "attack did not meet the tolerance threshold",
	SinkError:      "result sink write failure",
	InternalError:  "internal error",
}

// Message returns the registered message for a code, or the UnknownError
// message if the code was never registered.
func (c CodeError) Message() string {
	if m, ok := idMsg[c]; ok {
		return m
	}
	return idMsg[UnknownError]
}

// ExitCode maps a CodeError onto the process exit codes defined by the CLI
// contract: 0 success, 1 argument/IO error, 2 tolerance failure, 3 internal error.
func (c CodeError) ExitCode() int {
	switch c {
	case UnknownError:
		return 0
	case ToleranceError:
		return 2
	case InternalError:
		return 3
	default:
		return 1
	}
}
