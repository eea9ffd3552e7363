/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package testtfc

import (
	"encoding/json"
	"github.com/hashicorp/go-tfe"
	"log"
	"net/http"
	"strings"
)

// AddTeam registers a team whose current token is token, and makes the server accept only that token
func (srv *MockTFC) AddTeam(teamId string, token string) {
	srv.requestLock.Lock()
	srv.TeamTokens[teamId] = token
	srv.requestLock.Unlock()

	srv.SetToken(token)
}

// teamIdFromTokenPath parses /api/v2/teams/team-roLYatraNNailuJ2/authentication-token => "", "api", "v2" "teams" "team-roLYatraNNailuJ2" "authentication-token"
func teamIdFromTokenPath(path string) (string, bool) {
	urlPathParts := strings.Split(path, "/")

	if len(urlPathParts) < 6 {
		return "", false
	}
	if urlPathParts[3] == "teams" && urlPathParts[5] == "authentication-token" {
		return urlPathParts[4], true
	}
	return "", false
}

func (srv *MockTFC) HandleTokensPostRequests(w http.ResponseWriter, r *http.Request) bool {
	teamId, ok := teamIdFromTokenPath(r.URL.Path)
	if !ok {
		return false
	}

	// Creating a new team token replaces the existing one, so the old token stops working
	srv.requestLock.Lock()
	teamToken := &tfe.TeamToken{ID: teamId, Token: srv.NextToken}
	srv.TeamTokens[teamId] = teamToken.Token
	srv.requestLock.Unlock()
	srv.SetToken(teamToken.Token)

	writeTeamToken(w, teamToken)
	return true
}

func (srv *MockTFC) HandleTokensGetRequests(w http.ResponseWriter, r *http.Request) bool {
	teamId, ok := teamIdFromTokenPath(r.URL.Path)
	if !ok {
		return false
	}

	srv.requestLock.Lock()
	_, found := srv.TeamTokens[teamId]
	srv.requestLock.Unlock()

	if !found {
		w.WriteHeader(404)
		return true
	}

	// Never echo the token back on reads, like the real API
	writeTeamToken(w, &tfe.TeamToken{ID: teamId})
	return true
}

func writeTeamToken(w http.ResponseWriter, teamToken *tfe.TeamToken) {
	body, err := json.Marshal(MakeTeamTokenResponse(teamToken))
	if err != nil {
		w.WriteHeader(500)
		return
	}
	w.WriteHeader(200)
	_, err = w.Write(body)
	if err != nil {
		log.Fatal(err)
	}
}

func MakeTeamTokenResponse(teamToken *tfe.TeamToken) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"id":   "1337023",
			"type": "authentication-tokens",
			"attributes": map[string]interface{}{
				"created-at":   teamToken.CreatedAt,
				"last-used-at": teamToken.LastUsedAt,
				"description":  teamToken.Description,
				"token":        teamToken.Token,
				"expired-at":   "",
			},
		},
		"relationships": map[string]interface{}{},
	}
}
