/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"context"
	"fmt"
	"github.com/hashicorp/aws-secrets-rotation-notifier/secret-rotation/resource"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/sns"
	"log"
)

type RotateSecretHandler struct {
	// AWS service clients
	secretsManager secretsmanager.SecretsManager
	notifier       sns.Notifier
	// Produces the value of new secret versions
	generator resource.Generator
	// The system that consumes the secret, receives the pending value during setSecret and testSecret
	resource resource.Resource
	// Topic that is notified once a rotation has finished
	topicArn string
}

func (h *RotateSecretHandler) HandleRequest(ctx context.Context, request RotateSecretRequest) error {
	if !request.Step.Valid() {
		log.Default().Printf("invalid step parameter: %s", request.Step)
		return exceptions.ConfigurationError{Message: fmt.Sprintf("invalid step parameter: %s", request.Step)}
	}

	arn := request.SecretId
	token := request.ClientRequestToken

	// Make sure the version is staged correctly
	metadata, err := h.secretsManager.DescribeSecret(ctx, arn)
	if err != nil {
		log.Default().Printf("failed to describe secret %s: %v", arn, err)
		return err
	}
	if !metadata.RotationEnabled {
		log.Default().Printf("secret %s is not enabled for rotation", arn)
		return exceptions.ConfigurationError{Message: fmt.Sprintf("secret %s is not enabled for rotation", arn)}
	}

	stages, ok := metadata.VersionIdsToStages[token]
	if !ok {
		log.Default().Printf("secret version %s has no stage for rotation of secret %s", token, arn)
		return exceptions.ConfigurationError{Message: fmt.Sprintf("secret version %s has no stage for rotation of secret %s", token, arn)}
	}
	if secretsmanager.HasStage(stages, secretsmanager.CurrentVersionStage) {
		log.Default().Printf("secret version %s already set as AWSCURRENT for secret %s", token, arn)
		return nil
	}
	if !secretsmanager.HasStage(stages, secretsmanager.PendingVersionStage) {
		log.Default().Printf("secret version %s not set as AWSPENDING for rotation of secret %s", token, arn)
		return exceptions.ConfigurationError{Message: fmt.Sprintf("secret version %s not set as AWSPENDING for rotation of secret %s", token, arn)}
	}

	target := resource.Target{SecretId: arn, Token: token}

	switch request.Step {
	case CreateSecret:
		return h.CreateSecret(ctx, request)
	case SetSecret:
		log.Default().Printf("setSecret: applying pending version %s of secret %s", token, arn)
		return h.resource.SetSecret(ctx, target)
	case TestSecret:
		log.Default().Printf("testSecret: testing pending version %s of secret %s", token, arn)
		return h.resource.TestSecret(ctx, target)
	case FinishSecret:
		return h.FinishSecret(ctx, request)
	default:
		return exceptions.ConfigurationError{Message: fmt.Sprintf("invalid step parameter: %s", request.Step)}
	}
}
