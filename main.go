package main

import "github.com/thanhldv/store-backoffice/cmd"

func main() {
	cmd.Execute()
}
