// Package main provides the entry point for the fim file integrity monitor.
package main

import (
	"os"
)

func main() {
	os.Exit(Execute())
}
