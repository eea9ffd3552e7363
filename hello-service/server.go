/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package main

import (
	"github.com/gin-gonic/gin"
	"net/http"
)

const HelloPath = "/say/hello"

func NewRouter() *gin.Engine {
	router := gin.Default()
	router.GET(HelloPath, SayHello)
	return router
}

func SayHello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello!"})
}
