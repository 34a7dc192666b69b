// Copyright IBM Corp. 2023, 2025

package main

import "github.com/hashicorp/go-blobscan/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main start go-blobscan cli `blobscan`
func main() {
	cmd.Run(version, commit, date)
}
