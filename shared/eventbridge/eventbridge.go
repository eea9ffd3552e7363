/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package eventbridge

import (
	"context"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/exceptions"
)

// Event is a single entry to put on an event bus
type Event struct {
	Source       string
	DetailType   string
	Detail       string
	EventBusName string
}

type EventBus interface {
	PutEvent(ctx context.Context, event Event) (string, error)
}

type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

type EB struct {
	Client API
}

// NewFromConfig creates a new aws EventBridge client
func NewFromConfig(sdkConfig aws.Config) *EB {
	return &EB{
		Client: eventbridge.NewFromConfig(sdkConfig),
	}
}

// PutEvent puts one event on the bus and returns the id EventBridge assigned to it. PutEvents reports per-entry
// failures in the response rather than as an error, those are returned as a TransientError.
func (eb EB) PutEvent(ctx context.Context, event Event) (string, error) {
	output, err := eb.Client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				Source:       aws.String(event.Source),
				DetailType:   aws.String(event.DetailType),
				Detail:       aws.String(event.Detail),
				EventBusName: aws.String(event.EventBusName),
			},
		},
	})
	if err != nil {
		return "", err
	}

	if output.FailedEntryCount > 0 {
		for _, entry := range output.Entries {
			if entry.ErrorCode != nil {
				return "", exceptions.TransientError{
					Message: fmt.Sprintf("event bus %s rejected the event: %s %s", event.EventBusName, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage)),
				}
			}
		}
		return "", exceptions.TransientError{
			Message: fmt.Sprintf("event bus %s rejected %d entries", event.EventBusName, output.FailedEntryCount),
		}
	}

	if len(output.Entries) > 0 {
		return aws.ToString(output.Entries[0].EventId), nil
	}
	return "", nil
}
