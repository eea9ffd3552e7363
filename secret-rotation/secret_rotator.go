/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"context"
	"github.com/hashicorp/aws-secrets-rotation-notifier/secret-rotation/resource"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/sns"
	"log"
)

// RotationSubject is the subject of the message published once a rotation has finished
const RotationSubject = "Secrets Manager Change: rotation"

// CreateSecret stores a newly generated value as the AWSPENDING version, unless one was already stored for the token
func (h *RotateSecretHandler) CreateSecret(ctx context.Context, request RotateSecretRequest) error {
	arn := request.SecretId
	token := request.ClientRequestToken

	// Make sure the current secret exists
	currentValue, err := h.secretsManager.GetSecretValue(ctx, arn, "", secretsmanager.CurrentVersionStage)
	if err != nil {
		log.Default().Printf("createSecret: failed to get current version of secret %s: %v", arn, err)
		return err
	}

	// Now try to get the pending version, if there is none, put a new secret
	_, err = h.secretsManager.GetSecretValue(ctx, arn, token, secretsmanager.PendingVersionStage)
	if err == nil {
		log.Default().Printf("createSecret: successfully retrieved pending version %s of secret %s", token, arn)
		return nil
	}
	if !secretsmanager.IsNotFound(err) {
		log.Default().Printf("createSecret: failed to get pending version %s of secret %s: %v", token, arn, err)
		return err
	}

	log.Default().Printf("createSecret: generating new value for secret %s with version %s", arn, token)
	newValue, err := h.generator.Generate(ctx, resource.Target{SecretId: arn, Token: token}, currentValue)
	if err != nil {
		log.Default().Printf("createSecret: failed to generate new value for secret %s: %v", arn, err)
		return err
	}

	err = h.secretsManager.PutPendingSecretValue(ctx, arn, token, request.RotationToken, newValue)
	if err != nil {
		log.Default().Printf("createSecret: failed to put pending version %s of secret %s: %v", token, arn, err)
		return err
	}

	log.Default().Printf("createSecret: successfully put secret for ARN %s and version %s", arn, token)
	return nil
}

// FinishSecret moves AWSCURRENT to the token's version and then lets subscribers know the secret changed
func (h *RotateSecretHandler) FinishSecret(ctx context.Context, request RotateSecretRequest) error {
	arn := request.SecretId
	token := request.ClientRequestToken

	// First describe the secret to get the current version
	metadata, err := h.secretsManager.DescribeSecret(ctx, arn)
	if err != nil {
		return err
	}

	currentVersion := metadata.CurrentVersionId()
	if currentVersion == token {
		// The correct version is already marked as current, return
		log.Default().Printf("finishSecret: version %s already marked as AWSCURRENT for %s", token, arn)
		return nil
	}

	// Finalize by staging the secret version current
	err = h.secretsManager.MoveCurrentStage(ctx, arn, token, currentVersion)
	if err != nil {
		log.Default().Printf("finishSecret: failed to set AWSCURRENT stage to version %s for secret %s: %v", token, arn, err)
		return err
	}
	log.Default().Printf("finishSecret: successfully set AWSCURRENT stage to version %s for secret %s", token, arn)

	// The rotation is complete at this point, a failed notification must not fail the step
	h.NotifyRotation(ctx, arn)
	return nil
}

// NotifyRotation tells the topic subscribers to refresh their copy of the secret. Failures are only logged.
func (h *RotateSecretHandler) NotifyRotation(ctx context.Context, arn string) {
	if h.topicArn == "" {
		log.Default().Printf("no SNS topic configured, skipping rotation notification for secret %s", arn)
		return
	}

	messageId, err := h.notifier.Publish(ctx, h.topicArn, RotationSubject, sns.RefreshKeysMessage)
	if err != nil {
		log.Default().Printf("error publishing rotation of secret %s to SNS: %v", arn, err)
		return
	}
	log.Default().Printf("rotation of secret %s published to SNS with message id %s", arn, messageId)
}
