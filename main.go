package main

import "mail_trans_engine/cmd"

func main() {
	cmd.Execute()
}
