/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package awsconfig

import (
	"context"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"log"
	"os"
)

// EndpointUrlEnvVar optionally points the SNS client at another endpoint, e.g. a LocalStack instance
const EndpointUrlEnvVar = "AWS_ENDPOINT_URL"

func GetSdkConfig(ctx context.Context) aws.Config {
	setRetryMode := func(configuration *config.LoadOptions) error {
		configuration.RetryMaxAttempts = 3
		configuration.RetryMode = aws.RetryModeStandard
		return nil
	}
	configuration, err := config.LoadDefaultConfig(ctx, setRetryMode)

	if err != nil {
		log.Fatal("failed to initialize AWS SDK Configuration")
	}

	return configuration
}

// EndpointOverride returns the endpoint configured via AWS_ENDPOINT_URL, or nil when the default AWS endpoint
// should be used
func EndpointOverride() *string {
	endpoint, ok := os.LookupEnv(EndpointUrlEnvVar)
	if !ok || endpoint == "" {
		return nil
	}
	log.Default().Printf("overriding AWS endpoint with %s", endpoint)
	return aws.String(endpoint)
}
