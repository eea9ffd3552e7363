/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package mocking

import (
	"net/http"
	"strings"
)

type RequestMock struct {
	predicate RequestHandlerPredicate
	handler   http.HandlerFunc
}

type RequestHandlerPredicate func(r *http.Request) bool

type RequestMocks = []RequestMock

// CreateMock Create a RequestMock
func CreateMock(predicate RequestHandlerPredicate, handler http.HandlerFunc) RequestMock {
	return RequestMock{
		predicate: predicate,
		handler:   handler,
	}
}

// CheckForMock Find the first request mock that's predicate matches the request, or nil if no match is found
func CheckForMock(mocks RequestMocks, r *http.Request) http.HandlerFunc {
	for _, mock := range mocks {
		if mock.predicate(r) {
			return mock.handler
		}
	}
	return nil
}

// MethodAndPathSuffix matches requests with the given method whose path ends with suffix
func MethodAndPathSuffix(method string, suffix string) RequestHandlerPredicate {
	return func(r *http.Request) bool {
		return r.Method == method && strings.HasSuffix(r.URL.Path, suffix)
	}
}

// RespondWithStatus is a handler that only writes the status code
func RespondWithStatus(statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
	}
}
