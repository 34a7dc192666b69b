// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package blobscan

// magicBytesContainer is the ASCII tag that wraps a compressed region. The
// compressed payload starts directly after the tag.
var magicBytesContainer = [][]byte{
	[]byte("!CBD"),
}

// containerHeaderLength is the number of tag bytes in front of the payload.
const containerHeaderLength = 4
