package main

import "skillboard/internal/app/server"

func main() {
	server.Run()
}
