/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package resource

import (
	"context"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/tfc"
	"log"
)

// TFCTeamTokenResource rotates a secret holding Terraform Cloud credentials. Terraform Cloud only allows one token
// per team, so creating the pending token invalidates the current one right away. If storing the pending value fails
// after that, retries cannot authenticate and the team token has to be regenerated by hand.
type TFCTeamTokenResource struct {
	secretsManager secretsmanager.SecretsManager
}

func NewTFCTeamTokenResource(secretsManager secretsmanager.SecretsManager) *TFCTeamTokenResource {
	return &TFCTeamTokenResource{secretsManager: secretsManager}
}

// Generate creates a new team token with the current credentials and returns the credentials holding it
func (r *TFCTeamTokenResource) Generate(ctx context.Context, target Target, currentValue string) (string, error) {
	credentials, err := tfc.ParseCredentials(currentValue)
	if err != nil {
		return "", err
	}

	tfeClient, err := tfc.GetTFEClientWithCredentials(credentials)
	if err != nil {
		return "", err
	}

	log.Default().Printf("createSecret: creating new team token for team %s", credentials.TeamId)
	teamToken, err := tfeClient.TeamTokens.Create(ctx, credentials.TeamId)
	if err != nil {
		return "", tfc.Error(err)
	}
	log.Default().Printf("createSecret: Terraform Cloud issued team token %s for team %s, the previous token is no longer valid", teamToken.ID, credentials.TeamId)

	pending := &tfc.TFECredentialsSecret{
		Hostname: credentials.Hostname,
		TeamId:   credentials.TeamId,
		Token:    teamToken.Token,
	}
	return pending.Serialize()
}

func (r *TFCTeamTokenResource) SetSecret(ctx context.Context, target Target) error {
	log.Default().Printf("setSecret: Terraform Cloud already holds the pending team token of secret %s", target.SecretId)
	return nil
}

// TestSecret proves the pending credentials authenticate by reading the team token with them
func (r *TFCTeamTokenResource) TestSecret(ctx context.Context, target Target) error {
	pendingValue, err := r.secretsManager.GetSecretValue(ctx, target.SecretId, target.Token, secretsmanager.PendingVersionStage)
	if err != nil {
		return err
	}

	credentials, err := tfc.ParseCredentials(pendingValue)
	if err != nil {
		return err
	}

	tfeClient, err := tfc.GetTFEClientWithCredentials(credentials)
	if err != nil {
		return err
	}

	_, err = tfeClient.TeamTokens.Read(ctx, credentials.TeamId)
	if err != nil {
		log.Default().Printf("testSecret: pending team token of secret %s was rejected: %v", target.SecretId, err)
		return tfc.Error(err)
	}

	log.Default().Printf("testSecret: pending team token of secret %s is valid", target.SecretId)
	return nil
}
