/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package sns

import (
	"context"
	"encoding/json"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/awsconfig"
)

// Message is the body subscribers of the topic receive
type Message struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// RefreshKeysMessage tells subscribers to re-read the secret
var RefreshKeysMessage = Message{
	Type:    "Notification",
	Message: "Time to refresh keys",
}

type Notifier interface {
	Publish(ctx context.Context, topicArn string, subject string, message Message) (string, error)
}

type API interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNS struct {
	Client API
}

// NewFromConfig creates a new aws SNS client, honouring the AWS_ENDPOINT_URL override
func NewFromConfig(sdkConfig aws.Config) *SNS {
	endpoint := awsconfig.EndpointOverride()
	innerClient := sns.NewFromConfig(sdkConfig, func(options *sns.Options) {
		if endpoint != nil {
			options.BaseEndpoint = endpoint
		}
	})

	return &SNS{
		Client: innerClient,
	}
}

// Publish sends the message to the topic as JSON and returns the id SNS assigned to it
func (s SNS) Publish(ctx context.Context, topicArn string, subject string, message Message) (string, error) {
	serializedMessage, err := json.Marshal(message)
	if err != nil {
		return "", err
	}

	output, err := s.Client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicArn),
		Message:  aws.String(string(serializedMessage)),
		Subject:  aws.String(subject),
	})
	if err != nil {
		return "", err
	}

	return aws.ToString(output.MessageId), nil
}
