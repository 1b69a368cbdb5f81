package main

import "github.com/nguyentantai21042004/chunkflow/internal/cli"

func main() {
	cli.Execute()
}
