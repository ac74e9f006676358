//go:build !debug

package channel

const debugBuild = false
