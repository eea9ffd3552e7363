/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package resource

import (
	"context"
	"github.com/google/uuid"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
)

// PasswordGenerator asks Secrets Manager for a random password
type PasswordGenerator struct {
	secretsManager secretsmanager.SecretsManager
	options        secretsmanager.PasswordOptions
}

func NewPasswordGenerator(secretsManager secretsmanager.SecretsManager, options secretsmanager.PasswordOptions) *PasswordGenerator {
	return &PasswordGenerator{secretsManager: secretsManager, options: options}
}

func (g *PasswordGenerator) Generate(ctx context.Context, target Target, currentValue string) (string, error) {
	return g.secretsManager.GetRandomPassword(ctx, g.options)
}

// UUIDGenerator uses a random UUID as the secret value
type UUIDGenerator struct{}

func (UUIDGenerator) Generate(ctx context.Context, target Target, currentValue string) (string, error) {
	return uuid.NewString(), nil
}
