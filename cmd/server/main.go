package main

import "github.com/cvazquezfgc/planificacio-renovacio-via/internal/cli"

func main() {
	cli.Execute()
}
