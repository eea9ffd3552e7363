/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/hashicorp/aws-secrets-rotation-notifier/secret-rotation/resource"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/awsconfig"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/sns"
	"log"
	"os"
)

// RotateSecretRequest is the event Secrets Manager sends for every step of a rotation
type RotateSecretRequest struct {
	SecretId           string `json:"SecretId"`
	ClientRequestToken string `json:"ClientRequestToken"`
	Step               Step   `json:"Step"`
	RotationToken      string `json:"RotationToken,omitempty"`
}

type Step string

// Enum values for Step
const (
	CreateSecret Step = "createSecret"
	SetSecret    Step = "setSecret"
	TestSecret   Step = "testSecret"
	FinishSecret Step = "finishSecret"
)

// Valid reports whether s is one of the four rotation steps
func (s Step) Valid() bool {
	switch s {
	case CreateSecret, SetSecret, TestSecret, FinishSecret:
		return true
	}
	return false
}

// UnmarshalJSON rejects anything but the four rotation steps, so an unknown step never reaches the handler
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	step := Step(raw)
	if !step.Valid() {
		return exceptions.ConfigurationError{Message: fmt.Sprintf("invalid step parameter: %s", raw)}
	}
	*s = step
	return nil
}

func main() {
	// Create temporary context to initialize the handler with
	initContext := context.TODO()

	sdkConfig := awsconfig.GetSdkConfig(initContext)
	secretsManager := secretsmanager.NewFromConfig(sdkConfig)

	generator, rotatedResource, err := resource.FromEnvironment(secretsManager)
	if err != nil {
		log.Fatalf("failed to configure secret rotation: %s", err)
	}

	// Get the topic that is told about finished rotations
	topicArn := os.Getenv("SNS_TOPIC_ARN")
	if topicArn == "" {
		log.Default().Print("SNS_TOPIC_ARN is not set, finished rotations will not be announced")
	}

	handler := RotateSecretHandler{
		secretsManager: secretsManager,
		notifier:       sns.NewFromConfig(sdkConfig),
		generator:      generator,
		resource:       rotatedResource,
		topicArn:       topicArn,
	}

	lambda.Start(handler.HandleRequest)
}
