/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package eventbridge

import (
	"context"
	"errors"
	"fmt"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/eventbridge"
)

type MockEventBus struct {
	Events []eventbridge.Event
}

func (m *MockEventBus) PutEvent(ctx context.Context, event eventbridge.Event) (string, error) {
	m.Events = append(m.Events, event)
	return fmt.Sprintf("event-%d", len(m.Events)), nil
}

type MockEventBusWithErrorResponse struct {
	Attempts int
}

func (m *MockEventBusWithErrorResponse) PutEvent(ctx context.Context, event eventbridge.Event) (string, error) {
	m.Attempts++
	return "", errors.New("ResourceNotFoundException: Event bus does not exist")
}
