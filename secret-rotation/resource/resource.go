/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package resource

import (
	"context"
	"fmt"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
	"log"
	"os"
	"strconv"
)

// Target identifies the secret version a rotation step works on
type Target struct {
	SecretId string
	Token    string
}

// Resource is the system that consumes the secret. setSecret and testSecret are delegated to it.
type Resource interface {
	SetSecret(ctx context.Context, target Target) error
	TestSecret(ctx context.Context, target Target) error
}

// Generator produces the value of the pending version during createSecret
type Generator interface {
	Generate(ctx context.Context, target Target, currentValue string) (string, error)
}

type ResourceType string

// Enum values for ResourceType
const (
	NoResource   ResourceType = "none"
	TFCTeamToken ResourceType = "tfc-team-token"
)

type GeneratorType string

// Enum values for GeneratorType
const (
	PasswordGeneratorType GeneratorType = "password"
	UUIDGeneratorType     GeneratorType = "uuid"
)

// DefaultExcludeCharacters are left out of generated passwords unless EXCLUDE_CHARACTERS says otherwise
const DefaultExcludeCharacters = `/@"'\`

// NoOp is used when the secret is not applied to any external system, setSecret and testSecret have nothing to do
type NoOp struct{}

func (NoOp) SetSecret(ctx context.Context, target Target) error {
	log.Default().Printf("setSecret: no resource configured for secret %s, no additional action required", target.SecretId)
	return nil
}

func (NoOp) TestSecret(ctx context.Context, target Target) error {
	log.Default().Printf("testSecret: no resource configured for secret %s, no additional action required", target.SecretId)
	return nil
}

// FromEnvironment builds the generator and resource selected by RESOURCE_TYPE, SECRET_GENERATOR,
// EXCLUDE_CHARACTERS and PASSWORD_LENGTH
func FromEnvironment(secretsManager secretsmanager.SecretsManager) (Generator, Resource, error) {
	resourceType := ResourceType(getEnvOrDefault("RESOURCE_TYPE", string(NoResource)))

	switch resourceType {
	case NoResource:
		generator, err := generatorFromEnvironment(secretsManager)
		if err != nil {
			return nil, nil, err
		}
		return generator, NoOp{}, nil
	case TFCTeamToken:
		// Terraform Cloud generates team tokens itself
		if generatorType, ok := os.LookupEnv("SECRET_GENERATOR"); ok {
			log.Default().Printf("ignoring SECRET_GENERATOR=%s, Terraform Cloud generates team tokens", generatorType)
		}
		teamToken := &TFCTeamTokenResource{secretsManager: secretsManager}
		return teamToken, teamToken, nil
	default:
		return nil, nil, exceptions.ConfigurationError{Message: fmt.Sprintf("unknown RESOURCE_TYPE: %s", resourceType)}
	}
}

func generatorFromEnvironment(secretsManager secretsmanager.SecretsManager) (Generator, error) {
	generatorType := GeneratorType(getEnvOrDefault("SECRET_GENERATOR", string(PasswordGeneratorType)))

	switch generatorType {
	case PasswordGeneratorType:
		// An explicitly empty EXCLUDE_CHARACTERS excludes nothing
		excludeCharacters, ok := os.LookupEnv("EXCLUDE_CHARACTERS")
		if !ok {
			excludeCharacters = DefaultExcludeCharacters
		}
		options := secretsmanager.PasswordOptions{ExcludeCharacters: excludeCharacters}
		if length := os.Getenv("PASSWORD_LENGTH"); length != "" {
			parsedLength, err := strconv.ParseInt(length, 10, 64)
			if err != nil || parsedLength <= 0 {
				return nil, exceptions.ConfigurationError{Message: fmt.Sprintf("PASSWORD_LENGTH must be a positive integer, got %q", length)}
			}
			options.PasswordLength = parsedLength
		}
		return &PasswordGenerator{secretsManager: secretsManager, options: options}, nil
	case UUIDGeneratorType:
		return UUIDGenerator{}, nil
	default:
		return nil, exceptions.ConfigurationError{Message: fmt.Sprintf("unknown SECRET_GENERATOR: %s", generatorType)}
	}
}

func getEnvOrDefault(key string, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
