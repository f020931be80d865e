// Swatch - colour palettes by Lloyd clustering
//
// Swatch extracts a small representative colour palette from an image by
// clustering its pixels, and serves the same over HTTP.
package main

import "github.com/jmylchreest/swatch/internal/cli"

func main() {
	cli.Execute()
}
