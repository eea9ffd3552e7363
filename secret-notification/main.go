/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"context"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/awsconfig"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/sns"
	"log"
	"os"
)

// CloudTrailDetail is the detail of an EventBridge event for a Secrets Manager API call recorded by CloudTrail
type CloudTrailDetail struct {
	EventName         string `json:"eventName"`
	RequestParameters struct {
		SecretId string `json:"secretId"`
	} `json:"requestParameters"`
}

type SecretNotificationResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func main() {
	// Create temporary context to initialize the handler with
	initContext := context.TODO()

	sdkConfig := awsconfig.GetSdkConfig(initContext)

	// Get the topic notifications are published to
	topicArn := os.Getenv("SNS_TOPIC_ARN")
	if topicArn == "" {
		log.Default().Print("SNS_TOPIC_ARN is not set, publishing will fail")
	}

	handler := SecretNotificationHandler{
		notifier: sns.NewFromConfig(sdkConfig),
		topicArn: topicArn,
	}

	lambda.Start(handler.HandleRequest)
}
