package main

import "invite-media/cmd"

func main() {
	cmd.Execute()
}
