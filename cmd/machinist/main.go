// Package main provides the machinist CLI for building fixtures from
// blueprint documents.
package main

func main() {
	Execute()
}
