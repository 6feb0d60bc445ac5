package main

import "github.com/jvano/azure-webjobs-sdk-script/cmd"

func main() {
	cmd.Execute()
}
