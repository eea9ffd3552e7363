/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package tfc

import (
	"encoding/json"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/go-tfe"
	"log"
	"strings"
)

// TFECredentialsSecret is the value of a secret holding a Terraform Cloud team token
type TFECredentialsSecret struct {
	Hostname string `json:"hostname"`
	TeamId   string `json:"id"`
	Token    string `json:"token"`
}

// ParseCredentials decodes the JSON string value of a secret version
func ParseCredentials(secretString string) (*TFECredentialsSecret, error) {
	credentials := &TFECredentialsSecret{}
	if err := json.Unmarshal([]byte(secretString), credentials); err != nil {
		return nil, fmt.Errorf("secret value is not valid Terraform Cloud credentials JSON: %w", err)
	}
	return credentials, nil
}

// Serialize encodes the credentials back into a secret string
func (c *TFECredentialsSecret) Serialize() (string, error) {
	serialized, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(serialized), nil
}

func GetTFEClientWithCredentials(tfeCredentialsSecret *TFECredentialsSecret) (*tfe.Client, error) {
	if strings.HasPrefix(tfeCredentialsSecret.Hostname, "https:") || strings.HasPrefix(tfeCredentialsSecret.Hostname, "http:") {
		return ClientWithDefaultConfig(tfeCredentialsSecret.Hostname, tfeCredentialsSecret.Token)
	}
	log.Default().Print("prepending protocol to TFC client hostname")
	return ClientWithDefaultConfig(fmt.Sprintf("https://%s", tfeCredentialsSecret.Hostname), tfeCredentialsSecret.Token)
}

func ClientWithDefaultConfig(address string, token string) (*tfe.Client, error) {
	log.Default().Printf("creating new TFC client for %s", address)
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3

	client, err := tfe.NewClient(&tfe.Config{
		Address:           address,
		Token:             token,
		RetryServerErrors: true,
		HTTPClient:        retryClient.HTTPClient,
	})
	if err != nil {
		return nil, Error(err)
	}
	return client, nil
}
