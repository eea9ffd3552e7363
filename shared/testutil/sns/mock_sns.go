/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package sns

import (
	"context"
	"errors"
	"fmt"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/sns"
)

type PublishedMessage struct {
	TopicArn string
	Subject  string
	Message  sns.Message
}

type MockSNS struct {
	Published []PublishedMessage
}

func (m *MockSNS) Publish(ctx context.Context, topicArn string, subject string, message sns.Message) (string, error) {
	m.Published = append(m.Published, PublishedMessage{
		TopicArn: topicArn,
		Subject:  subject,
		Message:  message,
	})
	return fmt.Sprintf("message-%d", len(m.Published)), nil
}

type MockSNSWithErrorResponse struct {
	PublishAttempts int
}

func (m *MockSNSWithErrorResponse) Publish(ctx context.Context, topicArn string, subject string, message sns.Message) (string, error) {
	m.PublishAttempts++
	return "", errors.New("Topic does not exist")
}
