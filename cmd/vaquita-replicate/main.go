// Command vaquita-replicate tails a MySQL-compatible server's replication
// stream and prints decoded events as JSON lines.
package main

import "github.com/nchoubey/vaquita-replicate/cmd"

func main() {
	cmd.Execute()
}
