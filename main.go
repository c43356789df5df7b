package main

import "github.com/frahmantamala/teamchat/cmd"

func main() {
	cmd.Execute()
}
