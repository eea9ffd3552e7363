/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"context"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/awsconfig"
	"github.com/hashicorp/aws-secrets-rotation-notifier/shared/eventbridge"
	"os"
)

const (
	RelaySource     = "custom.secrets-manager"
	RelayDetailType = "SecretChanged"
)

// ChangedSecretDetail is the detail of the inbound secret change event
type ChangedSecretDetail struct {
	Name string `json:"name"`
}

// RelayedSecretDetail is the detail of the event put on the custom bus
type RelayedSecretDetail struct {
	SecretName string `json:"secret_name"`
}

func main() {
	// Create temporary context to initialize the handler with
	initContext := context.TODO()

	sdkConfig := awsconfig.GetSdkConfig(initContext)

	handler := SecretChangeRelayHandler{
		eventBus:     eventbridge.NewFromConfig(sdkConfig),
		eventBusName: os.Getenv("EVENT_BUS_NAME"),
	}

	lambda.Start(handler.HandleRequest)
}
