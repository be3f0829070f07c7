package main

import "github.com/huanfeng/adminpwa/cmd"

func main() {
	cmd.Execute()
}
