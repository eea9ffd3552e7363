/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"log"
	"os"
)

const DefaultPort = "8000"

func main() {
	address := ":" + Port()
	log.Default().Printf("hello service listening on %s", address)

	if err := NewRouter().Run(address); err != nil {
		log.Fatalf("hello service stopped: %v", err)
	}
}

// Port returns $PORT, or DefaultPort when it is not set
func Port() string {
	port := os.Getenv("PORT")
	if port == "" {
		return DefaultPort
	}
	return port
}
