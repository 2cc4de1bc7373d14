package main

import "radiantwavetech.com/radiantwave-updater/cmd/radiantwave-updater/cmd"

func main() {
	cmd.Execute()
}
