package main

import (
	"go.uber.org/fx"

	"github.com/bubbletea-slz/teahouse/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
