// cmd/fileharbor/main.go
package main

import (
	"context"

	"github.com/dalemusser/waffle/app"
	"github.com/fileharbor/fileharbor/internal/app/bootstrap"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
