// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package blobscan

// logger is an interface that defines the logging functions
// that are used while scanning and decoding
type logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
