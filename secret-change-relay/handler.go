/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/aws/aws-lambda-go/events"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/eventbridge"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
	"log"
)

type SecretChangeRelayHandler struct {
	eventBus     eventbridge.EventBus
	eventBusName string
}

func (h *SecretChangeRelayHandler) HandleRequest(ctx context.Context, event events.CloudWatchEvent) error {
	if h.eventBusName == "" {
		return exceptions.ConfigurationError{Message: "EVENT_BUS_NAME environment variable is not set"}
	}

	secretName, err := SecretName(event)
	if err != nil {
		return err
	}

	detail, err := json.Marshal(RelayedSecretDetail{SecretName: secretName})
	if err != nil {
		return err
	}

	eventId, err := h.eventBus.PutEvent(ctx, eventbridge.Event{
		Source:       RelaySource,
		DetailType:   RelayDetailType,
		Detail:       string(detail),
		EventBusName: h.eventBusName,
	})
	if err != nil {
		log.Default().Printf("failed to relay change of secret %s: %v", secretName, err)
		return err
	}

	log.Default().Printf("relayed change of secret %s to event bus %s as event %s", secretName, h.eventBusName, eventId)
	return nil
}

// SecretName reads detail.name from the inbound event
func SecretName(event events.CloudWatchEvent) (string, error) {
	detail := ChangedSecretDetail{}
	if len(event.Detail) > 0 {
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			return "", exceptions.ValidationError{Message: fmt.Sprintf("event detail is not valid JSON: %v", err)}
		}
	}

	if detail.Name == "" {
		return "", exceptions.ValidationError{Message: "event detail is missing the secret name"}
	}
	return detail.Name, nil
}
