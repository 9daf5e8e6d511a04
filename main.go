package main

import (
	"github.com/DarkHorse0725/NFT-marketplace/cmd"
)

// main 程序入口，例如 go run main.go deploy --network mumbai
func main() {
	cmd.Execute()
}
