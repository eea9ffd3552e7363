/*
 * Copyright (c) HashiCorp, Inc.
 * SPDX-License-Identifier: MPL-2.0
 */

package exceptions

type TFEUnauthorized struct {
	Message string
}

func (e TFEUnauthorized) Error() string {
	return e.Message
}

var TFEUnauthorizedToken = TFEUnauthorized{
	Message: "The Terraform Cloud team token stored in the secret is not valid. Check that the AWSCURRENT version of the secret holds a working token before rotating it again. If an earlier rotation created a new token that was never stored, generate a new team token in Terraform Cloud and store it as the AWSCURRENT version of the secret",
}

type TFEException struct {
	Message string
}

func (e TFEException) Error() string {
	return e.Message
}
