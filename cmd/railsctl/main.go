// Command railsctl drives Rails-style REST resources described in a
// definitions file.
//
//	railsctl --config resources.yml query people --param page=2
//	railsctl get person 5
//	railsctl create person --data '{"firstName":"Ana"}'
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
