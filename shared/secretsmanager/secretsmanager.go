/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package secretsmanager

import (
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
)

// CurrentVersionStage is AWS' hardcoded label that always indicates the "current" stage version
const CurrentVersionStage = "AWSCURRENT"

// PendingVersionStage is AWS' hardcoded label for the version created during a rotation that has not been promoted yet
const PendingVersionStage = "AWSPENDING"

type SecretsManager interface {
	DescribeSecret(ctx context.Context, secretId string) (*SecretMetadata, error)
	GetSecretValue(ctx context.Context, secretId string, versionId string, versionStage string) (string, error)
	PutPendingSecretValue(ctx context.Context, secretId string, token string, rotationToken string, secretValue string) error
	MoveCurrentStage(ctx context.Context, secretId string, toVersionId string, fromVersionId string) error
	GetRandomPassword(ctx context.Context, options PasswordOptions) (string, error)
}

// SecretMetadata is the subset of DescribeSecret the rotation steps need
type SecretMetadata struct {
	ARN                string
	RotationEnabled    bool
	VersionIdsToStages map[string][]string
}

// PasswordOptions configures GetRandomPassword. Zero values leave the AWS defaults in place.
type PasswordOptions struct {
	ExcludeCharacters string
	PasswordLength    int64
}

// API is the part of the AWS SDK client used by SM
type API interface {
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	UpdateSecretVersionStage(ctx context.Context, params *secretsmanager.UpdateSecretVersionStageInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretVersionStageOutput, error)
	GetRandomPassword(ctx context.Context, params *secretsmanager.GetRandomPasswordInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetRandomPasswordOutput, error)
}

type SM struct {
	Client API
}

// NewFromConfig creates a new aws secrets manager client
func NewFromConfig(sdkConfig aws.Config) *SM {
	return &SM{
		Client: secretsmanager.NewFromConfig(sdkConfig),
	}
}

func (sm SM) DescribeSecret(ctx context.Context, secretId string) (*SecretMetadata, error) {
	output, err := sm.Client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(secretId),
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("secret %s not found", secretId))
	}

	return &SecretMetadata{
		ARN:                aws.ToString(output.ARN),
		RotationEnabled:    aws.ToBool(output.RotationEnabled),
		VersionIdsToStages: output.VersionIdsToStages,
	}, nil
}

// GetSecretValue fetches the string value of a secret version. Either versionId or versionStage may be empty, but
// not both.
func (sm SM) GetSecretValue(ctx context.Context, secretId string, versionId string, versionStage string) (string, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretId),
	}
	if versionId != "" {
		input.VersionId = aws.String(versionId)
	}
	if versionStage != "" {
		input.VersionStage = aws.String(versionStage)
	}

	output, err := sm.Client.GetSecretValue(ctx, input)
	if err != nil {
		return "", classify(err, fmt.Sprintf("secret %s has no version matching id %q and stage %q", secretId, versionId, versionStage))
	}

	return aws.ToString(output.SecretString), nil
}

func (sm SM) PutPendingSecretValue(ctx context.Context, secretId string, token string, rotationToken string, secretValue string) error {
	input := &secretsmanager.PutSecretValueInput{
		SecretId:           aws.String(secretId),
		ClientRequestToken: aws.String(token),
		SecretString:       aws.String(secretValue),
		VersionStages:      []string{PendingVersionStage},
	}
	if rotationToken != "" {
		input.RotationToken = aws.String(rotationToken)
	}

	_, err := sm.Client.PutSecretValue(ctx, input)
	if err != nil {
		return classify(err, fmt.Sprintf("secret %s not found", secretId))
	}
	return nil
}

// MoveCurrentStage atomically moves the AWSCURRENT label to toVersionId. fromVersionId may be empty if no version
// currently holds the label.
func (sm SM) MoveCurrentStage(ctx context.Context, secretId string, toVersionId string, fromVersionId string) error {
	input := &secretsmanager.UpdateSecretVersionStageInput{
		SecretId:        aws.String(secretId),
		VersionStage:    aws.String(CurrentVersionStage),
		MoveToVersionId: aws.String(toVersionId),
	}
	if fromVersionId != "" {
		input.RemoveFromVersionId = aws.String(fromVersionId)
	}

	_, err := sm.Client.UpdateSecretVersionStage(ctx, input)
	if err != nil {
		return classify(err, fmt.Sprintf("secret %s or version %s not found", secretId, toVersionId))
	}
	return nil
}

func (sm SM) GetRandomPassword(ctx context.Context, options PasswordOptions) (string, error) {
	input := &secretsmanager.GetRandomPasswordInput{}
	if options.ExcludeCharacters != "" {
		input.ExcludeCharacters = aws.String(options.ExcludeCharacters)
	}
	if options.PasswordLength > 0 {
		input.PasswordLength = aws.Int64(options.PasswordLength)
	}

	output, err := sm.Client.GetRandomPassword(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}
	return aws.ToString(output.RandomPassword), nil
}

// HasStage reports whether the version's stage labels contain stage
func HasStage(stages []string, stage string) bool {
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}

// CurrentVersionId returns the id of the version holding AWSCURRENT, or "" if there is none
func (m *SecretMetadata) CurrentVersionId() string {
	for versionId, stages := range m.VersionIdsToStages {
		if HasStage(stages, CurrentVersionStage) {
			return versionId
		}
	}
	return ""
}

// IsNotFound reports whether err means the secret or version does not exist
func IsNotFound(err error) bool {
	var notFound exceptions.NotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return isResourceNotFound(err)
}

// isResourceNotFound matches both the modeled exception and generic API errors carrying the same code, as returned
// by emulators such as LocalStack
func isResourceNotFound(err error) bool {
	var resourceNotFound *types.ResourceNotFoundException
	if errors.As(err, &resourceNotFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException"
}

func classify(err error, message string) error {
	if isResourceNotFound(err) {
		return exceptions.NotFoundError{Message: message, Err: err}
	}
	return err
}
