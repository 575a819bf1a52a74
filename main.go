// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/ericabertugli/sitetools/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
