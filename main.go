package main

import "social-backend/cmd"

func main() {
	cmd.Execute()
}
