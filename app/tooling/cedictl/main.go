// This program provides an admin CLI against a running ledger service.
package main

import "github.com/cedichain/cedichain/app/tooling/cedictl/cmd"

func main() {
	cmd.Execute()
}
