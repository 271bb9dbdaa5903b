// Package main is the entry point for the Tutor API service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/tutor-x/cmd/tutor/app"
)

func main() {
	app.NewApp().Run()
}
