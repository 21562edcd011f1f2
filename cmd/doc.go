// Package cmd contains the mamgo binaries.
//
//   - gateway: HTTP node exposing channel publish/fetch/subscribe endpoints
//   - mamctl: command-line publisher and reader for development use
//   - common: shared helpers for seed and configuration loading
package cmd
