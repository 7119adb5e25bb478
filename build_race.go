//go:build race

package metrics

const raceBuild = true
