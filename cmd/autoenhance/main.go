package main

import "github.com/instant-hdr/autoenhance-go/cmd/autoenhance/cmd"

func main() {
	cmd.Execute()
}
