// Copyright 2026 The AquaKML Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/rudi-ru/aquakml/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
