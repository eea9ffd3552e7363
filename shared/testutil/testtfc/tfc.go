/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package testtfc

import (
	"encoding/json"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/testutil/mocking"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockTFC mocks the team token APIs of Terraform Cloud. It exposes methods for creating server-side state, such as
// the team tokens that are currently valid.
type MockTFC struct {
	Address string

	http *httptest.Server

	// TeamTokens is a map of the current token of every team, with the team ids as the keys
	TeamTokens map[string]string

	// NextToken is the value handed out the next time a team token is created
	NextToken string

	tokenLock sync.Mutex
	token     string

	mockLock     sync.Mutex
	requestMocks mocking.RequestMocks

	// General lock used by different mocked endpoints
	requestLock sync.Mutex
}

func NewMockTFC() *MockTFC {
	mock := &MockTFC{
		TeamTokens: map[string]string{},
		NextToken:  "newsupers3cret",
	}
	mock.http = httptest.NewServer(mock)
	mock.Address = mock.http.URL
	return mock
}

// SetToken restricts the server to requests authorized with token. An empty token accepts any request.
func (srv *MockTFC) SetToken(token string) {
	srv.tokenLock.Lock()
	srv.token = token
	srv.tokenLock.Unlock()
}

func (srv *MockTFC) authToken() string {
	srv.tokenLock.Lock()
	defer srv.tokenLock.Unlock()

	return srv.token
}

// MockRequest allows for requests to be mocked, which is especially useful if you want to test error cases. The
// predicate that you pass as the first argument can be used to make sure that you don't accidentally end up mocking the
// wrong request.
func (srv *MockTFC) MockRequest(predicate mocking.RequestHandlerPredicate, h http.HandlerFunc) {
	srv.mockLock.Lock()
	defer srv.mockLock.Unlock()
	srv.requestMocks = append(srv.requestMocks, mocking.CreateMock(predicate, h))
}

func (srv *MockTFC) checkForMockHandler(r *http.Request) http.HandlerFunc {
	srv.mockLock.Lock()
	defer srv.mockLock.Unlock()
	return mocking.CheckForMock(srv.requestMocks, r)
}

func (srv *MockTFC) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Default().Printf("mock TFC server handling request: %s %s", r.Method, r.URL.Path)

	// Check if the request should be handled via mock instead
	if mockHandler := srv.checkForMockHandler(r); mockHandler != nil {
		mockHandler(w, r)
		return
	}

	if code, body := srv.checkBaseRequest(r); code > 0 {
		w.WriteHeader(code)
		w.Write(body)
		return
	}

	switch r.Method {
	case "POST":
		srv.handlePOST(w, r)

	case "GET":
		srv.handleGET(w, r)

	default:
		w.WriteHeader(400)
	}
}

func (srv *MockTFC) handlePOST(w http.ResponseWriter, r *http.Request) {
	if srv.HandleTokensPostRequests(w, r) {
		return
	}

	// Not found error
	w.WriteHeader(404)
}

func (srv *MockTFC) handleGET(w http.ResponseWriter, r *http.Request) {
	// Handle requests with static paths
	switch r.URL.Path {
	case "/api/v2/ping":
		w.WriteHeader(200)
		return
	}

	if srv.HandleTokensGetRequests(w, r) {
		return
	}

	// Not found error
	w.WriteHeader(404)
}

func (srv *MockTFC) checkBaseRequest(r *http.Request) (int, []byte) {
	expectHeaders := []string{
		"User-Agent",
		"Authorization",
	}

	for _, hdr := range expectHeaders {
		if v := r.Header.Get(hdr); v == "" {
			detail := "bad request"
			apiError := struct{ Error string }{detail}
			body, _ := json.Marshal(apiError)
			return 400, body
		}
	}

	// The ping endpoint is used by the client during initialization and does not require a valid token
	if r.URL.Path == "/api/v2/ping" {
		return 0, []byte{}
	}

	// Check the auth token, when present.
	if token := srv.authToken(); token != "" {
		v := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if v != token {
			detail := "Team token invalid"
			apiError := struct{ Error string }{detail}
			body, _ := json.Marshal(apiError)
			return 401, body
		}
	}

	return 0, []byte{}
}

func (srv *MockTFC) Stop() {
	srv.http.Close()
}
