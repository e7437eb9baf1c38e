// Command rvtsim runs the virtual texture frame loop against a synthetic
// camera flying over a terrain and reports residency statistics.
package main

import "github.com/tebeka/atexit"

func main() {
	Execute()
	atexit.Exit(0)
}
