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
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/sns"
	"log"
	"net/http"
)

const missingFieldsMessage = "Missing required fields in the event."

type SecretNotificationHandler struct {
	notifier sns.Notifier
	topicArn string
}

// HandleRequest republishes a Secrets Manager API call as a notification. Every outcome is reported in the response,
// the returned error is always nil.
func (h *SecretNotificationHandler) HandleRequest(ctx context.Context, event events.CloudWatchEvent) (*SecretNotificationResponse, error) {
	detail, err := ParseDetail(event)
	if err != nil {
		log.Default().Printf("error: %v", err)
		return &SecretNotificationResponse{StatusCode: http.StatusBadRequest, Body: missingFieldsMessage}, nil
	}

	log.Default().Printf("received %s event for secret %s", detail.EventName, detail.RequestParameters.SecretId)

	subject := fmt.Sprintf("Secrets Manager Change: %s", detail.EventName)
	messageId, err := h.notifier.Publish(ctx, h.topicArn, subject, sns.RefreshKeysMessage)
	if err != nil {
		publishErr := exceptions.TransientError{Message: "Error publishing to SNS", Err: err}
		log.Default().Printf("%v", publishErr)
		return &SecretNotificationResponse{StatusCode: http.StatusInternalServerError, Body: publishErr.Error()}, nil
	}
	log.Default().Printf("message published to SNS with message id %s", messageId)

	return &SecretNotificationResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf("Successfully processed event: %s for secret %s", detail.EventName, detail.RequestParameters.SecretId),
	}, nil
}

// ParseDetail extracts the CloudTrail detail of the event, returning a ValidationError if the event name or the
// secret id is missing
func ParseDetail(event events.CloudWatchEvent) (*CloudTrailDetail, error) {
	detail := &CloudTrailDetail{}
	if len(event.Detail) > 0 {
		if err := json.Unmarshal(event.Detail, detail); err != nil {
			return nil, exceptions.ValidationError{Message: fmt.Sprintf("event detail is not valid JSON: %v", err)}
		}
	}

	if detail.EventName == "" || detail.RequestParameters.SecretId == "" {
		return nil, exceptions.ValidationError{Message: "missing required fields in the event"}
	}
	return detail, nil
}
