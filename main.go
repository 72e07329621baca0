package main

import "bitwise74/shop-api/cmd"

func main() {
	cmd.Execute()
}
