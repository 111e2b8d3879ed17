package main

import (
	"separation-service/app"
	"separation-service/pkg/observability"
)

func main() {
	observability.StartProfiling("separation-service")
	app.Run()
}
