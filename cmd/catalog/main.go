package main

import (
	"os"

	"github.com/matvault/matvault/internal/app"
)

func main() {
	os.Exit(app.Run("catalog", run))
}
