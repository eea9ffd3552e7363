/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package secretsmanager

import (
	"context"
	"errors"
	"fmt"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/secretsmanager"
)

// PreviousVersionStage is assigned by Secrets Manager to the version that loses AWSCURRENT
const PreviousVersionStage = "AWSPREVIOUS"

// MockSecretsManager is an in-memory secret with versions and stage labels that behaves like Secrets Manager does
// for the calls made during a rotation
type MockSecretsManager struct {
	SecretId        string
	RotationEnabled bool

	// Versions maps version ids to their stage labels
	Versions map[string][]string

	// Values maps version ids to their secret strings
	Values map[string]string

	// Password is returned by GetRandomPassword
	Password string

	// Calls that changed the secret
	PutCount        int
	StageMoveCount  int
	PasswordOptions *secretsmanager.PasswordOptions
	RotationTokens  []string
}

// NewMockSecretWithPendingVersion creates a rotation enabled secret where currentVersion holds AWSCURRENT and
// pendingVersion has been labeled AWSPENDING by Secrets Manager, but has no value yet
func NewMockSecretWithPendingVersion(secretId string, currentVersion string, currentValue string, pendingVersion string) *MockSecretsManager {
	return &MockSecretsManager{
		SecretId:        secretId,
		RotationEnabled: true,
		Versions: map[string][]string{
			currentVersion: {secretsmanager.CurrentVersionStage},
			pendingVersion: {secretsmanager.PendingVersionStage},
		},
		Values: map[string]string{
			currentVersion: currentValue,
		},
		Password: "g3nerated-passw0rd",
	}
}

func (msm *MockSecretsManager) notFound(format string, args ...interface{}) error {
	message := fmt.Sprintf(format, args...)
	return exceptions.NotFoundError{Message: message, Err: errors.New("ResourceNotFoundException: " + message)}
}

func (msm *MockSecretsManager) DescribeSecret(ctx context.Context, secretId string) (*secretsmanager.SecretMetadata, error) {
	if secretId != msm.SecretId {
		return nil, msm.notFound("secret %s not found", secretId)
	}

	versions := map[string][]string{}
	for versionId, stages := range msm.Versions {
		versions[versionId] = append([]string{}, stages...)
	}

	return &secretsmanager.SecretMetadata{
		ARN:                msm.SecretId,
		RotationEnabled:    msm.RotationEnabled,
		VersionIdsToStages: versions,
	}, nil
}

func (msm *MockSecretsManager) GetSecretValue(ctx context.Context, secretId string, versionId string, versionStage string) (string, error) {
	if secretId != msm.SecretId {
		return "", msm.notFound("secret %s not found", secretId)
	}

	for id, stages := range msm.Versions {
		if versionId != "" && id != versionId {
			continue
		}
		if versionStage != "" && !secretsmanager.HasStage(stages, versionStage) {
			continue
		}
		value, ok := msm.Values[id]
		if !ok {
			continue
		}
		return value, nil
	}

	return "", msm.notFound("secret %s has no version matching id %q and stage %q", secretId, versionId, versionStage)
}

func (msm *MockSecretsManager) PutPendingSecretValue(ctx context.Context, secretId string, token string, rotationToken string, secretValue string) error {
	if secretId != msm.SecretId {
		return msm.notFound("secret %s not found", secretId)
	}

	// Secrets Manager rejects a different value for an existing version
	if existing, ok := msm.Values[token]; ok && existing != secretValue {
		return errors.New("ResourceExistsException: a version with this token already exists with a different value")
	}

	// AWSPENDING can only be attached to one version at a time
	for versionId, stages := range msm.Versions {
		if versionId != token {
			msm.Versions[versionId] = removeStage(stages, secretsmanager.PendingVersionStage)
		}
	}
	if !secretsmanager.HasStage(msm.Versions[token], secretsmanager.PendingVersionStage) {
		msm.Versions[token] = append(msm.Versions[token], secretsmanager.PendingVersionStage)
	}

	msm.Values[token] = secretValue
	msm.PutCount++
	if rotationToken != "" {
		msm.RotationTokens = append(msm.RotationTokens, rotationToken)
	}
	return nil
}

func (msm *MockSecretsManager) MoveCurrentStage(ctx context.Context, secretId string, toVersionId string, fromVersionId string) error {
	if secretId != msm.SecretId {
		return msm.notFound("secret %s not found", secretId)
	}
	if _, ok := msm.Versions[toVersionId]; !ok {
		return msm.notFound("version %s not found", toVersionId)
	}

	// Secrets Manager refuses to move a label away from a version that does not hold it
	for versionId, stages := range msm.Versions {
		if secretsmanager.HasStage(stages, secretsmanager.CurrentVersionStage) && versionId != fromVersionId {
			return fmt.Errorf("InvalidParameterException: AWSCURRENT is attached to %s, not %q", versionId, fromVersionId)
		}
	}

	if fromVersionId != "" {
		msm.Versions[fromVersionId] = append(removeStage(msm.Versions[fromVersionId], secretsmanager.CurrentVersionStage), PreviousVersionStage)
	}
	msm.Versions[toVersionId] = append(msm.Versions[toVersionId], secretsmanager.CurrentVersionStage)
	msm.StageMoveCount++
	return nil
}

func (msm *MockSecretsManager) GetRandomPassword(ctx context.Context, options secretsmanager.PasswordOptions) (string, error) {
	msm.PasswordOptions = &options
	return msm.Password, nil
}

// VersionsWithStage returns the ids of every version labeled with stage
func (msm *MockSecretsManager) VersionsWithStage(stage string) []string {
	var versionIds []string
	for versionId, stages := range msm.Versions {
		if secretsmanager.HasStage(stages, stage) {
			versionIds = append(versionIds, versionId)
		}
	}
	return versionIds
}

func removeStage(stages []string, stage string) []string {
	var remaining []string
	for _, s := range stages {
		if s != stage {
			remaining = append(remaining, s)
		}
	}
	return remaining
}

// MockSecretsManagerWithErrorResponse fails every call, as if Secrets Manager were unreachable
type MockSecretsManagerWithErrorResponse struct{}

func (msm *MockSecretsManagerWithErrorResponse) DescribeSecret(ctx context.Context, secretId string) (*secretsmanager.SecretMetadata, error) {
	return nil, errors.New("whoopsies")
}

func (msm *MockSecretsManagerWithErrorResponse) GetSecretValue(ctx context.Context, secretId string, versionId string, versionStage string) (string, error) {
	return "", errors.New("whoopsies")
}

func (msm *MockSecretsManagerWithErrorResponse) PutPendingSecretValue(ctx context.Context, secretId string, token string, rotationToken string, secretValue string) error {
	return errors.New("whoopsies")
}

func (msm *MockSecretsManagerWithErrorResponse) MoveCurrentStage(ctx context.Context, secretId string, toVersionId string, fromVersionId string) error {
	return errors.New("whoopsies")
}

func (msm *MockSecretsManagerWithErrorResponse) GetRandomPassword(ctx context.Context, options secretsmanager.PasswordOptions) (string, error) {
	return "", errors.New("whoopsies")
}
