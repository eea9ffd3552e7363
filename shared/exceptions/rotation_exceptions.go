/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package exceptions

// ConfigurationError means the secret, the event or the function itself is set up in a way that prevents the
// request from ever succeeding. The invoking scheduler should not expect a retry to help.
type ConfigurationError struct {
	Message string
}

func (e ConfigurationError) Error() string {
	return e.Message
}

// NotFoundError is returned when the secret or one of its versions does not exist in the secret store
type NotFoundError struct {
	Message string
	Err     error
}

func (e NotFoundError) Error() string {
	return e.Message
}

func (e NotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError means the inbound event is missing a field the handler needs
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// TransientError wraps a failed call to an outbound messaging service (SNS, EventBridge)
type TransientError struct {
	Message string
	Err     error
}

func (e TransientError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e TransientError) Unwrap() error {
	return e.Err
}
