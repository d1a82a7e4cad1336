// Package main is the entry of the akitapower command line tool.
package main

import "github.com/sarchlab/akitapower/akitapower/cmd"

func main() {
	cmd.Execute()
}
