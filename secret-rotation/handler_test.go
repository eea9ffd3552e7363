/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/hashicorp/aws-secrets-rotation-notifier/secret-rotation/resource"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
	sm "github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
	sharedsns "github.com/hashicorp/aws-secrets-rotation-notifier/shared/sns"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/tfc"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/testutil/secretsmanager"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/testutil/sns"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/testutil/testtfc"
	"github.com/stretchr/testify/assert"
	"testing"
)

const (
	testSecretArn  = "arn:aws:secretsmanager:us-east-1:123456789042:secret:prod/db-AbCdEf"
	testTopicArn   = "arn:aws:sns:us-east-1:123456789042:secret-rotations"
	currentVersion = "a1b2c3d4-current"
	pendingVersion = "e5f6a7b8-pending"
)

var allSteps = []Step{CreateSecret, SetSecret, TestSecret, FinishSecret}

func newTestHandler(mockSecretsManager sm.SecretsManager, notifier sharedsns.Notifier) *RotateSecretHandler {
	return &RotateSecretHandler{
		secretsManager: mockSecretsManager,
		notifier:       notifier,
		generator:      resource.NewPasswordGenerator(mockSecretsManager, sm.PasswordOptions{ExcludeCharacters: resource.DefaultExcludeCharacters}),
		resource:       resource.NoOp{},
		topicArn:       testTopicArn,
	}
}

func newTestRequest(step Step) RotateSecretRequest {
	return RotateSecretRequest{
		SecretId:           testSecretArn,
		ClientRequestToken: pendingVersion,
		Step:               step,
	}
}

func TestRotateSecretHandler_CreateSecret(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	// Send the test request
	err := testHandler.HandleRequest(context.Background(), newTestRequest(CreateSecret))
	// Verify no errors were returned
	if err != nil {
		t.Error(err)
	}

	// Verify the generated value was stored as the pending version
	assert.Equal(t, 1, mockSecretsManager.PutCount)
	assert.Equal(t, "g3nerated-passw0rd", mockSecretsManager.Values[pendingVersion])
	assert.Equal(t, []string{pendingVersion}, mockSecretsManager.VersionsWithStage(sm.PendingVersionStage))
	assert.Equal(t, resource.DefaultExcludeCharacters, mockSecretsManager.PasswordOptions.ExcludeCharacters)

	// Verify the current version was left alone
	assert.Equal(t, []string{currentVersion}, mockSecretsManager.VersionsWithStage(sm.CurrentVersionStage))
	assert.Equal(t, "hunter2", mockSecretsManager.Values[currentVersion])
	assert.Empty(t, mockSNS.Published, "No notifications should be sent before the rotation finished")
}

func TestRotateSecretHandler_CreateSecretIsIdempotent(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	testHandler := newTestHandler(mockSecretsManager, &sns.MockSNS{})

	// Send the same request twice, as a retrying scheduler would
	for i := 0; i < 2; i++ {
		err := testHandler.HandleRequest(context.Background(), newTestRequest(CreateSecret))
		if err != nil {
			t.Error(err)
		}
	}

	// Verify exactly one pending value was stored
	assert.Equal(t, 1, mockSecretsManager.PutCount)
	assert.Equal(t, "g3nerated-passw0rd", mockSecretsManager.Values[pendingVersion])
}

func TestRotateSecretHandler_CreateSecretForwardsRotationToken(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	testHandler := newTestHandler(mockSecretsManager, &sns.MockSNS{})

	testRequest := newTestRequest(CreateSecret)
	testRequest.RotationToken = "rotation-token-1"

	err := testHandler.HandleRequest(context.Background(), testRequest)
	if err != nil {
		t.Error(err)
	}

	assert.Equal(t, []string{"rotation-token-1"}, mockSecretsManager.RotationTokens)
}

func TestRotateSecretHandler_CreateSecretWithoutCurrentValue(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	delete(mockSecretsManager.Values, currentVersion)
	testHandler := newTestHandler(mockSecretsManager, &sns.MockSNS{})

	err := testHandler.HandleRequest(context.Background(), newTestRequest(CreateSecret))

	// Verify the missing current version is reported as not found
	var notFound exceptions.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, 0, mockSecretsManager.PutCount)
}

func TestRotateSecretHandler_SetAndTestSecretAreNoOps(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	for _, step := range []Step{SetSecret, TestSecret} {
		err := testHandler.HandleRequest(context.Background(), newTestRequest(step))
		if err != nil {
			t.Errorf("%s: %v", step, err)
		}
	}

	assert.Equal(t, 0, mockSecretsManager.PutCount)
	assert.Equal(t, 0, mockSecretsManager.StageMoveCount)
	assert.Empty(t, mockSNS.Published)
}

func TestRotateSecretHandler_FinishSecret(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSecretsManager.Values[pendingVersion] = "n3w-hunter2"
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	// Send the test request
	err := testHandler.HandleRequest(context.Background(), newTestRequest(FinishSecret))
	// Verify no errors were returned
	if err != nil {
		t.Error(err)
	}

	// Verify exactly one version holds AWSCURRENT and it is the pending one
	assert.Equal(t, []string{pendingVersion}, mockSecretsManager.VersionsWithStage(sm.CurrentVersionStage))
	assert.Equal(t, []string{currentVersion}, mockSecretsManager.VersionsWithStage(secretsmanager.PreviousVersionStage))
	assert.Equal(t, 1, mockSecretsManager.StageMoveCount)

	// Verify subscribers were told to refresh their keys
	if assert.Len(t, mockSNS.Published, 1) {
		assert.Equal(t, testTopicArn, mockSNS.Published[0].TopicArn)
		assert.Equal(t, "Secrets Manager Change: rotation", mockSNS.Published[0].Subject)
		assert.Equal(t, sharedsns.RefreshKeysMessage, mockSNS.Published[0].Message)
	}
}

func TestRotateSecretHandler_FinishSecretSurvivesPublishError(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSNS := &sns.MockSNSWithErrorResponse{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	err := testHandler.HandleRequest(context.Background(), newTestRequest(FinishSecret))

	// Verify the failed notification neither failed the step nor undid the stage move
	assert.NoError(t, err)
	assert.Equal(t, 1, mockSNS.PublishAttempts)
	assert.Equal(t, []string{pendingVersion}, mockSecretsManager.VersionsWithStage(sm.CurrentVersionStage))
}

func TestRotateSecretHandler_FinishSecretWithoutTopic(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)
	testHandler.topicArn = ""

	err := testHandler.HandleRequest(context.Background(), newTestRequest(FinishSecret))

	assert.NoError(t, err)
	assert.Empty(t, mockSNS.Published)
	assert.Equal(t, []string{pendingVersion}, mockSecretsManager.VersionsWithStage(sm.CurrentVersionStage))
}

func TestRotateSecretHandler_FinishSecretAlreadyCurrent(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	// Call the step directly, bypassing the staging checks of HandleRequest
	testRequest := newTestRequest(FinishSecret)
	testRequest.ClientRequestToken = currentVersion
	err := testHandler.FinishSecret(context.Background(), testRequest)

	assert.NoError(t, err)
	assert.Equal(t, 0, mockSecretsManager.StageMoveCount)
	assert.Empty(t, mockSNS.Published)
}

func TestRotateSecretHandler_AllStepsAreNoOpsOnceCurrent(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	for _, step := range allSteps {
		testRequest := newTestRequest(step)
		testRequest.ClientRequestToken = currentVersion

		err := testHandler.HandleRequest(context.Background(), testRequest)
		if err != nil {
			t.Errorf("%s: %v", step, err)
		}
	}

	// Verify nothing was changed
	assert.Equal(t, 0, mockSecretsManager.PutCount)
	assert.Equal(t, 0, mockSecretsManager.StageMoveCount)
	assert.Nil(t, mockSecretsManager.PasswordOptions, "No password should have been generated")
	assert.Empty(t, mockSNS.Published)
}

func TestRotateSecretHandler_RotationDisabled(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSecretsManager.RotationEnabled = false
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	for _, step := range allSteps {
		err := testHandler.HandleRequest(context.Background(), newTestRequest(step))

		var configurationErr exceptions.ConfigurationError
		assert.True(t, errors.As(err, &configurationErr), "%s should fail with a configuration error", step)
		assert.EqualError(t, err, "secret "+testSecretArn+" is not enabled for rotation")
	}

	// Verify nothing was changed
	assert.Equal(t, 0, mockSecretsManager.PutCount)
	assert.Equal(t, 0, mockSecretsManager.StageMoveCount)
	assert.Empty(t, mockSNS.Published)
}

func TestRotateSecretHandler_UnknownVersion(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	testHandler := newTestHandler(mockSecretsManager, &sns.MockSNS{})

	testRequest := newTestRequest(CreateSecret)
	testRequest.ClientRequestToken = "who-dis"
	err := testHandler.HandleRequest(context.Background(), testRequest)

	var configurationErr exceptions.ConfigurationError
	assert.True(t, errors.As(err, &configurationErr))
	assert.EqualError(t, err, "secret version who-dis has no stage for rotation of secret "+testSecretArn)
	assert.Equal(t, 0, mockSecretsManager.PutCount)
}

func TestRotateSecretHandler_VersionNotPending(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSecretsManager.Versions[pendingVersion] = []string{secretsmanager.PreviousVersionStage}
	testHandler := newTestHandler(mockSecretsManager, &sns.MockSNS{})

	err := testHandler.HandleRequest(context.Background(), newTestRequest(FinishSecret))

	var configurationErr exceptions.ConfigurationError
	assert.True(t, errors.As(err, &configurationErr))
	assert.Equal(t, 0, mockSecretsManager.StageMoveCount)
}

func TestRotateSecretHandler_UnknownSecret(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	testHandler := newTestHandler(mockSecretsManager, &sns.MockSNS{})

	testRequest := newTestRequest(CreateSecret)
	testRequest.SecretId = "arn:aws:secretsmanager:us-east-1:123456789042:secret:nope"
	err := testHandler.HandleRequest(context.Background(), testRequest)

	var notFound exceptions.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestRotateSecretHandler_SecretsManagerError(t *testing.T) {
	testHandler := newTestHandler(&secretsmanager.MockSecretsManagerWithErrorResponse{}, &sns.MockSNS{})

	err := testHandler.HandleRequest(context.Background(), newTestRequest(CreateSecret))

	assert.EqualError(t, err, "whoopsies")
}

func TestRotateSecretHandler_InvalidStep(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	testHandler := newTestHandler(mockSecretsManager, &sns.MockSNS{})

	err := testHandler.HandleRequest(context.Background(), newTestRequest("rollbackSecret"))

	var configurationErr exceptions.ConfigurationError
	assert.True(t, errors.As(err, &configurationErr))
	assert.EqualError(t, err, "invalid step parameter: rollbackSecret")
}

func TestRotateSecretRequest_Unmarshal(t *testing.T) {
	testPayload := `{"SecretId":"` + testSecretArn + `","ClientRequestToken":"` + pendingVersion + `","Step":"testSecret"}`

	request := RotateSecretRequest{}
	err := json.Unmarshal([]byte(testPayload), &request)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, testSecretArn, request.SecretId)
	assert.Equal(t, pendingVersion, request.ClientRequestToken)
	assert.Equal(t, TestSecret, request.Step)
}

func TestRotateSecretRequest_UnmarshalUnknownStep(t *testing.T) {
	testPayload := `{"SecretId":"` + testSecretArn + `","ClientRequestToken":"` + pendingVersion + `","Step":"rollbackSecret"}`

	request := RotateSecretRequest{}
	err := json.Unmarshal([]byte(testPayload), &request)

	var configurationErr exceptions.ConfigurationError
	assert.True(t, errors.As(err, &configurationErr))
}

func TestRotateSecretHandler_FullRotation(t *testing.T) {
	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, "hunter2", pendingVersion)
	mockSNS := &sns.MockSNS{}
	testHandler := newTestHandler(mockSecretsManager, mockSNS)

	// Run every step in the order Secrets Manager invokes them
	for _, step := range allSteps {
		err := testHandler.HandleRequest(context.Background(), newTestRequest(step))
		if err != nil {
			t.Fatalf("%s: %v", step, err)
		}
	}

	// A retried finishSecret is a no-op once the version is current
	err := testHandler.HandleRequest(context.Background(), newTestRequest(FinishSecret))
	assert.NoError(t, err)

	assert.Equal(t, []string{pendingVersion}, mockSecretsManager.VersionsWithStage(sm.CurrentVersionStage))
	assert.Equal(t, "g3nerated-passw0rd", mockSecretsManager.Values[pendingVersion])
	assert.Equal(t, 1, mockSecretsManager.StageMoveCount)
	assert.Len(t, mockSNS.Published, 1)
}

func TestRotateSecretHandler_FullRotationOfTeamToken(t *testing.T) {
	// Create mock TFC instance
	tfcServer := testtfc.NewMockTFC()
	defer tfcServer.Stop()
	tfcServer.AddTeam("team-roLYatraNNailuJ2", "supers3cret")

	currentCredentials := &tfc.TFECredentialsSecret{Hostname: tfcServer.Address, TeamId: "team-roLYatraNNailuJ2", Token: "supers3cret"}
	currentValue, err := currentCredentials.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	mockSecretsManager := secretsmanager.NewMockSecretWithPendingVersion(testSecretArn, currentVersion, currentValue, pendingVersion)
	mockSNS := &sns.MockSNS{}

	teamToken := resource.NewTFCTeamTokenResource(mockSecretsManager)
	testHandler := newTestHandler(mockSecretsManager, mockSNS)
	testHandler.generator = teamToken
	testHandler.resource = teamToken

	for _, step := range allSteps {
		err := testHandler.HandleRequest(context.Background(), newTestRequest(step))
		if err != nil {
			t.Fatalf("%s: %v", step, err)
		}
	}

	// Verify the Team Token has been rotated and promoted
	newValue, err := mockSecretsManager.GetSecretValue(context.Background(), testSecretArn, "", sm.CurrentVersionStage)
	if err != nil {
		t.Fatal(err)
	}
	newCredentials, err := tfc.ParseCredentials(newValue)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "newsupers3cret", newCredentials.Token)
	assert.Equal(t, "team-roLYatraNNailuJ2", newCredentials.TeamId)
	assert.Len(t, mockSNS.Published, 1)
}
