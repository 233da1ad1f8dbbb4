// Package main is the entry point for mvt-analytics, the marketing budget
// allocation and projection service.
package main

import "github.com/aristath/mvt-analytics/internal/cli"

func main() {
	cli.Execute()
}
